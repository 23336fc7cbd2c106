package container

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Scope is the per-request store: a key/value map that holds scoped
// instances (and anything else the request wants to stash) for the duration
// of one logical request. Scopes travel on a context.Context, so everything
// called with that context — including work it spawns — sees the same store,
// while concurrent scopes on different contexts never see each other.
type Scope struct {
	id string

	mu     sync.Mutex
	values map[string]any
	ended  bool
}

type scopeCtxKey struct{}

func newScope() *Scope {
	return &Scope{
		id:     uuid.NewString(),
		values: make(map[string]any),
	}
}

// ID returns the scope's unique identity, handy for request logging.
func (s *Scope) ID() string { return s.id }

// Set stores a value under key. Keys are write-once: a second Set of the
// same key fails with ErrScopedKeyConflict.
func (s *Scope) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrScopeMissing
	}
	if _, exists := s.values[key]; exists {
		return fmt.Errorf("%w: %q", ErrScopedKeyConflict, key)
	}
	s.values[key] = value
	return nil
}

// Get returns the value stored under key, or ErrScopedKeyMissing.
func (s *Scope) Get(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, ErrScopeMissing
	}
	value, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScopedKeyMissing, key)
	}
	return value, nil
}

// Delete removes the value stored under key, or fails with
// ErrScopedKeyMissing if it was never set.
func (s *Scope) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrScopeMissing
	}
	if _, ok := s.values[key]; !ok {
		return fmt.Errorf("%w: %q", ErrScopedKeyMissing, key)
	}
	delete(s.values, key)
	return nil
}

func (s *Scope) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// ScopeFrom returns the open scope carried by ctx, or ErrScopeMissing when
// ctx carries none (or only an already-ended one).
func ScopeFrom(ctx context.Context) (*Scope, error) {
	scope, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	if !ok || scope.isEnded() {
		return nil, ErrScopeMissing
	}
	return scope, nil
}

// StartScope opens a scope for the duration of fn.
//
// A fresh scope is attached to a derived context, every scoped registration
// is resolved into it before fn runs, and the scope is ended when fn
// returns — success or failure. fn's error and any teardown errors are
// joined.
func (c *Container) StartScope(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.requireBuilt(); err != nil {
		return err
	}

	ctx = context.WithValue(ctx, scopeCtxKey{}, newScope())

	if err := c.fillScope(ctx); err != nil {
		return errors.Join(err, c.endScopeOnce(ctx))
	}
	err := fn(ctx)
	return errors.Join(err, c.endScopeOnce(ctx))
}

// endScopeOnce ends the scope on ctx, tolerating a callback that already
// ended it explicitly.
func (c *Container) endScopeOnce(ctx context.Context) error {
	if err := c.EndScope(ctx); err != nil && !errors.Is(err, ErrScopeMissing) {
		return err
	}
	return nil
}

// fillScope resolves every scoped registration into the scope on ctx,
// dependencies first, so scoped instances exist before the callback runs.
func (c *Container) fillScope(ctx context.Context) error {
	c.mu.RLock()
	names := append([]string(nil), c.order...)
	c.mu.RUnlock()

	for _, name := range names {
		c.mu.RLock()
		e := c.entries[name]
		c.mu.RUnlock()
		if e == nil || e.reg.Lifetime != LifetimeScoped {
			continue
		}
		if _, err := c.getService(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// EndScope closes the scope on ctx: every scoped instance present in its
// store is torn down in reverse dependency order and removed. Teardown
// failures are joined, and entries processed before a failure stay cleared.
// Ending a scope twice fails with ErrScopeMissing, as does calling EndScope
// on a context without a scope.
func (c *Container) EndScope(ctx context.Context) error {
	if err := c.requireBuilt(); err != nil {
		return err
	}
	scope, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	if !ok {
		return ErrScopeMissing
	}

	scope.mu.Lock()
	if scope.ended {
		scope.mu.Unlock()
		return ErrScopeMissing
	}
	scope.ended = true
	values := scope.values
	scope.values = make(map[string]any)
	scope.mu.Unlock()

	c.mu.RLock()
	names := append([]string(nil), c.order...)
	regs := make(map[string]Registration, len(values))
	for name := range values {
		if e, ok := c.entries[name]; ok {
			regs[name] = e.reg
		}
	}
	c.mu.RUnlock()

	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		instance, present := values[name]
		if !present {
			continue
		}
		reg, ok := regs[name]
		if !ok || reg.Lifetime != LifetimeScoped {
			continue
		}
		delete(values, name)
		if err := releaseInstance(reg, instance); err != nil {
			errs = append(errs, fmt.Errorf("teardown %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
