package container

import (
	"errors"
	"testing"
)

// Shared helpers and fixtures used across test files.

// mustBuild calls t.Fatal if Build fails.
func mustBuild(t *testing.T, c *Container, regs ...Registration) {
	t.Helper()
	if err := c.Build(regs...); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

// value returns a factory producing a fixed value.
func value(v any) Factory {
	return func(...any) (any, error) {
		return v, nil
	}
}

// counting returns a factory producing fresh *instance values and the call
// counter it increments. Not safe for concurrent use; the concurrency tests
// roll their own atomic counters.
func counting(name string) (Factory, *int) {
	calls := new(int)
	factory := func(deps ...any) (any, error) {
		*calls++
		return &instance{name: name, deps: deps}, nil
	}
	return factory, calls
}

// instance is a generic produced value carrying whatever was injected.
type instance struct {
	name string
	deps []any
}

// closable records teardown through a shared log slice.
type closable struct {
	name   string
	closed int
	log    *[]string
}

func (c *closable) Close() error {
	c.closed++
	if c.log != nil {
		*c.log = append(*c.log, c.name)
	}
	return nil
}

// failCloser always fails to close.
type failCloser struct{}

var errCloseFailed = errors.New("close failed")

func (failCloser) Close() error { return errCloseFailed }

// names extracts the registration names from an ordered slice.
func names(regs []Registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.Name
	}
	return out
}

// reg is shorthand for a no-op registration with declared dependencies.
func reg(name string, lifetime Lifetime, deps ...string) Registration {
	r := Registration{
		Name:     name,
		Lifetime: lifetime,
		Factory:  value(name),
	}
	r.Dependencies = deps
	return r
}
