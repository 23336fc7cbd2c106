package container

// Lifetime controls how many instances of a service the container creates
// and when they are torn down.
type Lifetime int

const (
	// LifetimeSingleton creates one instance per container. It is constructed
	// at most once — during Build for eager containers, on first use
	// otherwise — and lives until [Container.Destroy].
	LifetimeSingleton Lifetime = iota

	// LifetimeScoped creates one instance per open scope. The instance lives
	// in the scope's store and is torn down when the scope ends. Two scopes
	// never share an instance.
	LifetimeScoped

	// LifetimeTransient creates a fresh instance on every resolution. The
	// instance is never cached; its teardown runs as soon as the resolving
	// call completes.
	LifetimeTransient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case LifetimeSingleton:
		return "singleton"
	case LifetimeScoped:
		return "scoped"
	case LifetimeTransient:
		return "transient"
	default:
		return "unknown"
	}
}
