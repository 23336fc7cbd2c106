package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolve invokes target with the instances of its declared dependencies,
// injected positionally in declared order.
//
// With no declared names the registry is never consulted: target is invoked
// directly. Otherwise every name must be registered — missing names fail
// with ErrUnregisteredDependency listing all of them, before any factory
// runs. Dependencies are resolved sequentially, each according to its own
// lifetime, recursing as deep as the graph requires.
//
// Transient dependencies of this call are torn down exactly once as soon as
// the invocation finishes, whether target succeeded or failed. Teardown
// errors are joined after target's own error, never swallowed.
func (c *Container) Resolve(ctx context.Context, target Factory, deps ...string) (any, error) {
	if len(deps) == 0 {
		return target()
	}
	if err := c.requireBuilt(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	var missing []string
	for _, name := range deps {
		if _, ok := c.entries[name]; !ok {
			missing = append(missing, name)
		}
	}
	c.mu.RUnlock()
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredDependency, strings.Join(missing, ", "))
	}

	return c.invoke(ctx, target, deps)
}

// transientUse records a transient instance created for one invocation.
type transientUse struct {
	reg      Registration
	instance any
}

// invoke resolves deps, calls target with the instances, and releases the
// transient instances created for this call. Every factory with declared
// dependencies goes through here, so the transient teardown rule holds at
// every nesting level.
func (c *Container) invoke(ctx context.Context, target Factory, deps []string) (result any, err error) {
	if len(deps) == 0 {
		return target()
	}

	var transients []transientUse
	defer func() {
		for i := len(transients) - 1; i >= 0; i-- {
			use := transients[i]
			if terr := releaseInstance(use.reg, use.instance); terr != nil {
				err = errors.Join(err, fmt.Errorf("teardown %q: %w", use.reg.Name, terr))
			}
		}
	}()

	args := make([]any, len(deps))
	for i, name := range deps {
		c.mu.RLock()
		e := c.entries[name]
		c.mu.RUnlock()
		if e == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnregisteredDependency, name)
		}

		instance, derr := c.getService(ctx, e)
		if derr != nil {
			return nil, derr
		}
		if e.reg.Lifetime == LifetimeTransient {
			transients = append(transients, transientUse{reg: e.reg, instance: instance})
		}
		args[i] = instance
	}

	return target(args...)
}
