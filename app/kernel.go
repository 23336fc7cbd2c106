// Package app is the application kernel: it boots the service container,
// wires the core providers and serves HTTP with a scope per request.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/loomdi/loom/config"
	"github.com/loomdi/loom/container"
)

// Application owns the container, configuration, logger and router.
type Application struct {
	Container *container.Container
	Router    *Router

	cfg *config.Config
	log *zap.Logger
}

// Option configures New.
type Option func(*appOptions)

type appOptions struct {
	envFiles []string
}

// WithEnvFiles overrides the .env files loaded at bootstrap.
func WithEnvFiles(files ...string) Option {
	return func(o *appOptions) { o.envFiles = files }
}

// New boots the application: it builds an eager container from the core
// provider plus the given providers, then wires the router with the
// request-ID, logging and scope middleware.
func New(ctx context.Context, providers []container.Provider, opts ...Option) (*Application, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := container.New(container.WithEagerSingletons())
	all := append([]container.Provider{&CoreProvider{EnvFiles: o.envFiles}}, providers...)
	if err := container.RegisterProviders(ctx, c, all...); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	cfgAny, err := c.GetService(ctx, "config")
	if err != nil {
		return nil, err
	}
	logAny, err := c.GetService(ctx, "logger")
	if err != nil {
		return nil, err
	}

	a := &Application{
		Container: c,
		Router:    NewRouter(),
		cfg:       cfgAny.(*config.Config),
		log:       logAny.(*zap.Logger),
	}
	a.Router.Middleware(RequestID, RequestLogger(a.log), ScopeMiddleware(c))
	return a, nil
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
// and destroys the container.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.App.Env),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(err, a.Close())
		}
	case <-ctx.Done():
		a.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(err, a.Close())
		}
	}
	return a.Close()
}

// Close destroys the container, running singleton teardown hooks.
func (a *Application) Close() error {
	return a.Container.Destroy()
}
