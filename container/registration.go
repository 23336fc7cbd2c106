package container

// Factory produces a service instance. The resolved instances of the
// registration's declared dependencies are passed positionally, in declared
// order. A registration with no dependencies receives no arguments.
type Factory func(deps ...any) (any, error)

// Teardown releases an instance when its lifecycle ends. When a registration
// declares no Teardown, instances implementing io.Closer are closed instead.
type Teardown func(instance any) error

// Registration is the declarative unit the container is built from: a named
// service, its lifetime, the factory that produces it, the ordered names it
// depends on, and an optional teardown hook.
//
// Dependencies are always declared explicitly — the container never inspects
// a factory to discover them.
type Registration struct {
	Name         string
	Lifetime     Lifetime
	Factory      Factory
	Teardown     Teardown
	Dependencies []string
}

// Option configures a Registration at construction time.
type Option func(*Registration)

// WithDependencies declares the ordered service names the factory needs.
// Instances are injected positionally in this order.
func WithDependencies(names ...string) Option {
	return func(r *Registration) {
		r.Dependencies = names
	}
}

// WithTeardown sets the hook invoked with the instance when its lifecycle
// ends: Destroy for singletons, EndScope for scoped services, and the end of
// the resolving call for transients.
func WithTeardown(fn Teardown) Option {
	return func(r *Registration) {
		r.Teardown = fn
	}
}

// Singleton declares a service constructed at most once per container.
func Singleton(name string, factory Factory, opts ...Option) Registration {
	return newRegistration(name, LifetimeSingleton, factory, opts)
}

// Scoped declares a service constructed at most once per open scope.
func Scoped(name string, factory Factory, opts ...Option) Registration {
	return newRegistration(name, LifetimeScoped, factory, opts)
}

// Transient declares a service constructed fresh on every resolution.
func Transient(name string, factory Factory, opts ...Option) Registration {
	return newRegistration(name, LifetimeTransient, factory, opts)
}

func newRegistration(name string, lifetime Lifetime, factory Factory, opts []Option) Registration {
	r := Registration{
		Name:     name,
		Lifetime: lifetime,
		Factory:  factory,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
