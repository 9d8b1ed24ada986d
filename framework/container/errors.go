package container

import (
	"errors"
	"fmt"
)

var (
	// ErrNotBuilt is returned by resolution and scope operations called before Build.
	ErrNotBuilt = errors.New("container: not built, call Build first")
	// ErrInvalidLifecycle is returned for a lifecycle outside Transient, Scoped and Singleton.
	ErrInvalidLifecycle = errors.New("container: invalid lifecycle")
	// ErrConstructionProducedEmpty is returned when a factory or concrete constructor yields nil.
	ErrConstructionProducedEmpty = errors.New("container: construction produced an empty instance")

	ErrInvalidKey           = errors.New("container: service key cannot be empty")
	ErrNoStrategy           = errors.New("container: registration needs a concrete type or a factory")
	ErrUnresolvedDependency = errors.New("container: dependency is not registered")
	ErrScopeEnded           = errors.New("container: scope has ended")
	ErrTypeMismatch         = errors.New("container: resolved instance has unexpected type")
)

// ResolutionError carries the key and lifecycle of a failed construction.
type ResolutionError struct {
	Key       ServiceKey
	Lifecycle Lifecycle
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("container: resolve [%s] (%s): %v", e.Key, e.Lifecycle, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
