package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// entry is the runtime record for one committed registration.
type entry struct {
	reg Registration

	// once serializes singleton construction: concurrent first resolutions
	// of the same name construct exactly once. The factory's result — value
	// or error — is memoized for the rest of the container's lifetime.
	once     sync.Once
	done     atomic.Bool
	instance any
	err      error
}

// Container is the composition root: a name-keyed registry of service
// registrations plus the singleton instance cache. Create one with [New],
// commit registrations with [Container.Build], and retrieve instances with
// [Container.GetService] or [Container.Resolve].
//
// A Container is safe for concurrent use. There is no process-wide instance;
// independent containers coexist freely, which keeps tests isolated.
type Container struct {
	mu sync.RWMutex

	entries map[string]*entry

	// order lists every committed name, dependencies before dependents.
	// Teardown walks it in reverse so dependents are released first.
	order []string

	eager bool
	built bool
}

// ContainerOption configures a Container at construction time.
type ContainerOption func(*Container)

// WithEagerSingletons makes Build construct every singleton immediately, in
// dependency order, instead of deferring to first use. In an eager container
// a singleton cache miss after Build is an error rather than a lazy
// construction.
func WithEagerSingletons() ContainerOption {
	return func(c *Container) {
		c.eager = true
	}
}

// New creates an empty container ready for Build.
func New(opts ...ContainerOption) *Container {
	c := &Container{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build validates and commits a batch of registrations.
//
// The batch is ordered first (failing with ErrCircularDependency on a
// cycle), then checked for duplicate names within the batch
// (ErrDuplicateService) and against earlier builds (ErrAlreadyRegistered),
// and finally every declared dependency must resolve to a name in the union
// of old and new registrations (ErrServiceNotRegistered). A failed Build
// commits nothing.
//
// Eager containers then construct every singleton in the batch, dependencies
// first, before returning.
func (c *Container) Build(regs ...Registration) error {
	ordered, err := order(regs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	seen := make(map[string]bool, len(ordered))
	for _, r := range ordered {
		if _, exists := c.entries[r.Name]; exists {
			c.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrAlreadyRegistered, r.Name)
		}
		if seen[r.Name] {
			c.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrDuplicateService, r.Name)
		}
		seen[r.Name] = true
	}
	for _, r := range ordered {
		for _, dep := range r.Dependencies {
			if _, exists := c.entries[dep]; !exists && !seen[dep] {
				c.mu.Unlock()
				return fmt.Errorf("%w: %q (dependency of %q)", ErrServiceNotRegistered, dep, r.Name)
			}
		}
	}
	for _, r := range ordered {
		c.entries[r.Name] = &entry{reg: r}
		c.order = append(c.order, r.Name)
	}
	eager := c.eager
	c.built = true
	c.mu.Unlock()

	if !eager {
		return nil
	}
	for _, r := range ordered {
		if r.Lifetime != LifetimeSingleton {
			continue
		}
		c.mu.RLock()
		e := c.entries[r.Name]
		c.mu.RUnlock()
		if _, err := c.getService(context.Background(), e); err != nil {
			return err
		}
	}
	return nil
}

// GetService returns the instance registered under name, constructing it
// according to its lifetime. Scoped services require a scope on ctx.
func (c *Container) GetService(ctx context.Context, name string) (any, error) {
	c.mu.RLock()
	built := c.built
	eager := c.eager
	e := c.entries[name]
	c.mu.RUnlock()

	if !built {
		return nil, ErrNotInitialized
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotRegistered, name)
	}

	// Eager containers construct singletons only during Build; a miss here
	// means something requested a singleton ahead of its eager construction.
	if eager && e.reg.Lifetime == LifetimeSingleton && !e.done.Load() {
		return nil, fmt.Errorf("%w: %q", ErrSingletonNotInitialized, name)
	}

	return c.getService(ctx, e)
}

// getService obtains an instance for a committed entry, recursing through
// invoke for anything that has to be constructed.
func (c *Container) getService(ctx context.Context, e *entry) (any, error) {
	switch e.reg.Lifetime {
	case LifetimeSingleton:
		e.once.Do(func() {
			e.instance, e.err = c.invoke(ctx, e.reg.Factory, e.reg.Dependencies)
			e.done.Store(true)
		})
		if e.err != nil {
			return nil, fmt.Errorf("resolving %q: %w", e.reg.Name, e.err)
		}
		return e.instance, nil

	case LifetimeScoped:
		scope, err := ScopeFrom(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: scoped service %q", ErrScopeMissing, e.reg.Name)
		}
		return c.scopedInstance(ctx, scope, e)

	case LifetimeTransient:
		instance, err := c.invoke(ctx, e.reg.Factory, e.reg.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", e.reg.Name, err)
		}
		return instance, nil

	default:
		return nil, fmt.Errorf("service %q has unknown lifetime %d", e.reg.Name, e.reg.Lifetime)
	}
}

// scopedInstance returns the scope's cached instance for the entry,
// constructing and caching it on first use within the scope.
func (c *Container) scopedInstance(ctx context.Context, scope *Scope, e *entry) (any, error) {
	if v, err := scope.Get(e.reg.Name); err == nil {
		return v, nil
	} else if !errors.Is(err, ErrScopedKeyMissing) {
		return nil, err
	}

	instance, err := c.invoke(ctx, e.reg.Factory, e.reg.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", e.reg.Name, err)
	}

	if err := scope.Set(e.reg.Name, instance); err != nil {
		if errors.Is(err, ErrScopedKeyConflict) {
			// A concurrent resolution in the same scope won; keep the cached
			// instance and release the extra one.
			if cached, getErr := scope.Get(e.reg.Name); getErr == nil {
				return cached, releaseInstance(e.reg, instance)
			}
		}
		return nil, err
	}
	return instance, nil
}

// Destroy tears down every cached singleton in reverse dependency order and
// clears the registry. Teardown failures are collected and joined, not
// swallowed, and never stop the remaining entries from being released.
// After Destroy the container behaves as if it was never built.
func (c *Container) Destroy() error {
	c.mu.Lock()
	if !c.built {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	entries := c.entries
	names := c.order
	c.entries = make(map[string]*entry)
	c.order = nil
	c.built = false
	c.mu.Unlock()

	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		e := entries[names[i]]
		if e.reg.Lifetime != LifetimeSingleton || !e.done.Load() || e.err != nil {
			continue
		}
		if err := releaseInstance(e.reg, e.instance); err != nil {
			errs = append(errs, fmt.Errorf("teardown %q: %w", e.reg.Name, err))
		}
	}
	return errors.Join(errs...)
}

// requireBuilt fails with ErrNotInitialized before the first Build.
func (c *Container) requireBuilt() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.built {
		return ErrNotInitialized
	}
	return nil
}

// releaseInstance runs the registration's declared teardown; without one,
// instances implementing io.Closer are closed. Anything else is a no-op.
func releaseInstance(reg Registration, instance any) error {
	if reg.Teardown != nil {
		return reg.Teardown(instance)
	}
	if closer, ok := instance.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
