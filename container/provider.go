package container

import (
	"context"
	"fmt"
)

// Provider groups related registrations, the way a framework service
// provider does.
//
// Register returns the registrations the provider contributes; it must not
// resolve anything. Boot runs after every provider's registrations have been
// committed in one batch, so it may resolve any service freely.
//
//	type StorageProvider struct{ container.BaseProvider }
//
//	func (StorageProvider) Register() []container.Registration {
//	    return []container.Registration{
//	        container.Singleton("db", openDB, container.WithTeardown(closeDB)),
//	    }
//	}
type Provider interface {
	Register() []Registration
	Boot(ctx context.Context, c *Container) error
}

// BaseProvider is an embeddable no-op Boot. Embed it and override only what
// you need.
type BaseProvider struct{}

func (BaseProvider) Boot(context.Context, *Container) error { return nil }

// RegisterProviders commits the registrations of all providers in a single
// all-or-nothing Build, then boots each provider in order. A Boot failure
// stops the sequence and is returned wrapped.
func RegisterProviders(ctx context.Context, c *Container, providers ...Provider) error {
	var regs []Registration
	for _, p := range providers {
		regs = append(regs, p.Register()...)
	}
	if err := c.Build(regs...); err != nil {
		return err
	}
	for _, p := range providers {
		if err := p.Boot(ctx, c); err != nil {
			return fmt.Errorf("boot %T: %w", p, err)
		}
	}
	return nil
}
