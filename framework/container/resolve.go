package container

import "fmt"

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves key from r and type-asserts the result. ok is false when
// key is not registered.
//
//	// Instead of: v, err := c.Resolve("db"); db := v.(*sql.DB)
//	// Write:      db, ok, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](r Resolver, key ServiceKey) (T, bool, error) {
	var zero T
	v, err := r.Resolve(key)
	if err != nil || v == nil {
		return zero, false, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: [%s] is %T, want %T", ErrTypeMismatch, key, v, zero)
	}
	return typed, true, nil
}

// MustResolve is like Resolve but panics when key is unregistered or fails.
func MustResolve[T any](r Resolver, key ServiceKey) T {
	typed, ok, err := Resolve[T](r, key)
	if err != nil {
		panic(err)
	}
	if !ok {
		panic(fmt.Sprintf("container: no registration for [%s]", key))
	}
	return typed
}

// ResolveOf resolves the service registered under KeyOf[T]().
func ResolveOf[T any](r Resolver) (T, bool, error) {
	return Resolve[T](r, KeyOf[T]())
}

// Provide registers a typed factory under KeyOf[T]().
//
//	container.Provide(c, container.Singleton, func(r container.Resolver) (*Clock, error) {
//	    return &Clock{}, nil
//	})
func Provide[T any](c *Container, l Lifecycle, f func(r Resolver) (T, error)) error {
	return c.RegisterFactory(l, KeyOf[T](), func(r Resolver) (any, error) {
		v, err := f(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}
