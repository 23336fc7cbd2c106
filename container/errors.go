package container

import "errors"

var (
	// ErrNotInitialized is returned when the container is used before its
	// first successful Build, or after Destroy.
	ErrNotInitialized = errors.New("container not initialized")

	// ErrDuplicateService is returned by Build when two registrations in the
	// submitted batch share a name.
	ErrDuplicateService = errors.New("duplicate service name")

	// ErrAlreadyRegistered is returned by Build when a submitted name
	// collides with a registration committed by an earlier Build.
	ErrAlreadyRegistered = errors.New("service already registered")

	// ErrCircularDependency is returned when the dependency graph contains a
	// cycle. The error message includes the full chain.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrServiceNotRegistered is returned when no registration exists for the
	// requested name.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrSingletonNotInitialized is returned by an eager container when a
	// singleton is requested before its instance has been constructed —
	// typically a factory reaching for a singleton it never declared.
	ErrSingletonNotInitialized = errors.New("singleton not initialized")

	// ErrUnregisteredDependency is returned by Resolve when one or more of
	// the declared dependency names have no registration. The message names
	// every offender.
	ErrUnregisteredDependency = errors.New("unregistered dependency")

	// ErrScopeMissing is returned when a scoped operation runs on a context
	// that carries no open scope.
	ErrScopeMissing = errors.New("no open scope")

	// ErrScopedKeyConflict is returned when a scope key is written twice.
	ErrScopedKeyConflict = errors.New("scoped key already set")

	// ErrScopedKeyMissing is returned when reading or deleting a scope key
	// that was never set.
	ErrScopedKeyMissing = errors.New("scoped key not found")
)
