package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomdi/loom/app"
	"github.com/loomdi/loom/container"
)

type session struct{ id int64 }

// sessionProvider registers a scoped service whose factory counts
// constructions.
type sessionProvider struct {
	container.BaseProvider

	constructed atomic.Int64
}

func (p *sessionProvider) Register() []container.Registration {
	return []container.Registration{
		container.Scoped("session", func(...any) (any, error) {
			return &session{id: p.constructed.Add(1)}, nil
		}),
	}
}

func newTestApp(t *testing.T, providers ...container.Provider) *app.Application {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")

	a, err := app.New(context.Background(), providers,
		app.WithEnvFiles("testdata/nonexistent.env"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewBootsCoreServices(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, "testing", a.Config().App.Env)
	assert.NotNil(t, a.Logger())

	// Core singletons are eagerly constructed during bootstrap.
	cfg, err := a.Container.GetService(context.Background(), "config")
	require.NoError(t, err)
	assert.Same(t, a.Config(), cfg)
}

func TestProviderBootFailureSurfaces(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")

	_, err := app.New(context.Background(),
		[]container.Provider{&failingBootProvider{}},
		app.WithEnvFiles("testdata/nonexistent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap")
}

type failingBootProvider struct{ container.BaseProvider }

func (p *failingBootProvider) Register() []container.Registration { return nil }
func (p *failingBootProvider) Boot(context.Context, *container.Container) error {
	return assert.AnError
}

func TestScopeMiddlewareSharesInstanceWithinRequest(t *testing.T) {
	p := &sessionProvider{}
	a := newTestApp(t, p)

	a.Router.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		first, err := a.Container.GetService(r.Context(), "session")
		require.NoError(t, err)
		second, err := a.Container.GetService(r.Context(), "session")
		require.NoError(t, err)
		assert.Same(t, first, second)
		app.Success(w, first.(*session).id)
	})

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), p.constructed.Load())
}

func TestScopeMiddlewareIsolatesRequests(t *testing.T) {
	p := &sessionProvider{}
	a := newTestApp(t, p)

	a.Router.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		s, err := a.Container.GetService(r.Context(), "session")
		require.NoError(t, err)
		app.Success(w, s.(*session).id)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	// A fresh scoped instance per request.
	assert.Equal(t, int64(3), p.constructed.Load())
}

func TestRequestIDHeader(t *testing.T) {
	a := newTestApp(t)

	a.Router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		app.Success(w, app.RequestIDFrom(r.Context()))
	})

	t.Run("generated when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("incoming ID preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, req)
		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})
}

func TestRouterParamAndPrefix(t *testing.T) {
	a := newTestApp(t)

	a.Router.Prefix("/api", func(api *app.Router) {
		api.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			app.Success(w, app.Param(r, "id"))
		})
	})

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":"7"}`, rec.Body.String())
}
