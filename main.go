package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/loomdi/loom/app"
	"github.com/loomdi/loom/container"
)

// Store is a process-wide key/value store. Singleton: one instance for
// the life of the application, flushed on shutdown.
type Store struct {
	log *zap.Logger

	mu   sync.RWMutex
	data map[string]string
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *Store) Close() error {
	s.log.Info("store flushed", zap.Int("keys", len(s.data)))
	return nil
}

// RequestTracer is scoped: each HTTP request gets its own instance, torn
// down when the request scope ends.
type RequestTracer struct {
	log   *zap.Logger
	steps []string
}

func (t *RequestTracer) Step(name string) { t.steps = append(t.steps, name) }

func (t *RequestTracer) Close() error {
	t.log.Debug("trace", zap.Strings("steps", t.steps))
	return nil
}

// UnitOfWork is transient: a fresh one per resolution, released as soon
// as the resolving call returns.
type UnitOfWork struct {
	store  *Store
	tracer *RequestTracer
	done   bool
}

func (u *UnitOfWork) Put(key, value string) {
	u.tracer.Step("put " + key)
	u.store.Set(key, value)
}

func (u *UnitOfWork) Close() error {
	u.done = true
	return nil
}

// StoreProvider wires the demo services into the container.
type StoreProvider struct {
	container.BaseProvider
}

func (p *StoreProvider) Register() []container.Registration {
	return []container.Registration{
		container.Singleton("store", func(deps ...any) (any, error) {
			return &Store{log: deps[0].(*zap.Logger), data: make(map[string]string)}, nil
		}, container.WithDependencies("logger")),

		container.Scoped("tracer", func(deps ...any) (any, error) {
			return &RequestTracer{log: deps[0].(*zap.Logger)}, nil
		}, container.WithDependencies("logger")),

		container.Transient("uow", func(deps ...any) (any, error) {
			return &UnitOfWork{store: deps[0].(*Store), tracer: deps[1].(*RequestTracer)}, nil
		}, container.WithDependencies("store", "tracer")),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, []container.Provider{&StoreProvider{}})
	if err != nil {
		panic(err)
	}
	log := a.Logger()
	r := a.Router

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		app.Success(w, map[string]any{"service": a.Config().App.Name})
	})

	r.Prefix("/kv", func(kv *app.Router) {
		kv.Get("/{key}", func(w http.ResponseWriter, req *http.Request) {
			store, err := a.Container.GetService(req.Context(), "store")
			if err != nil {
				app.Error(w, http.StatusInternalServerError, err.Error())
				return
			}
			v, ok := store.(*Store).Get(app.Param(req, "key"))
			if !ok {
				app.Error(w, http.StatusNotFound, "key not found")
				return
			}
			app.Success(w, v)
		})

		kv.Put("/{key}", func(w http.ResponseWriter, req *http.Request) {
			// The unit of work is transient: it exists only for the
			// duration of this Resolve call and is released right after.
			_, err := a.Container.Resolve(req.Context(), func(deps ...any) (any, error) {
				uow := deps[0].(*UnitOfWork)
				uow.Put(app.Param(req, "key"), req.URL.Query().Get("value"))
				return nil, nil
			}, "uow")
			if err != nil {
				app.Error(w, http.StatusInternalServerError, err.Error())
				return
			}
			app.Created(w, app.Param(req, "key"))
		})
	})

	if err := a.Run(ctx); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}
