// Package container provides a name-keyed dependency-injection container
// with three service lifecycles and ordered teardown.
//
// Services are declared as registrations — a name, a lifetime, a factory,
// an explicit list of dependency names, and an optional teardown hook — and
// committed with [Container.Build], which orders the dependency graph,
// rejects cycles and duplicates, and (for eager containers) constructs every
// singleton up front.
//
// # Quick start
//
//	c := container.New(container.WithEagerSingletons())
//	err := c.Build(
//	    container.Singleton("db", openDB, container.WithTeardown(closeDB)),
//	    container.Scoped("logger", newRequestLogger),
//	    container.Transient("worker", newWorker,
//	        container.WithDependencies("logger", "db")),
//	)
//
//	v, err := c.GetService(ctx, "db")
//
// # Lifetimes
//
// [LifetimeSingleton] — one instance per container, alive until
// [Container.Destroy].
//
// [LifetimeScoped] — one instance per open scope. Scopes are opened with
// [Container.StartScope], travel on the context, and tear their instances
// down when they end. Two scopes never share an instance.
//
// [LifetimeTransient] — a fresh instance on every resolution, torn down as
// soon as the resolving call completes.
//
// # Scopes
//
//	err := c.StartScope(ctx, func(ctx context.Context) error {
//	    logger, err := c.GetService(ctx, "logger") // scoped: cached per request
//	    ...
//	    return nil
//	})
//
// # Resolving ad-hoc targets
//
// [Container.Resolve] injects registered services into any function:
//
//	out, err := c.Resolve(ctx, func(deps ...any) (any, error) {
//	    logger := deps[0].(*zap.Logger)
//	    db := deps[1].(*sql.DB)
//	    return runJob(logger, db)
//	}, "logger", "db")
//
// Transient dependencies used by the call are released right after it
// returns.
//
// # Teardown
//
// A registration's [WithTeardown] hook runs when the instance's lifecycle
// ends; without one, instances implementing io.Closer are closed. Teardown
// always runs in reverse dependency order — dependents before their
// dependencies — and teardown errors are joined, never swallowed.
package container
