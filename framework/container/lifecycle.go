package container

import (
	"fmt"
	"strings"
)

// Lifecycle is the policy governing instance reuse for a registration.
type Lifecycle int

const (
	// Transient builds a new instance on every Resolve. The caller owns it.
	Transient Lifecycle = iota
	// Scoped reuses one instance per scope.
	Scoped
	// Singleton reuses one instance for the container's whole lifetime.
	Singleton
)

func (l Lifecycle) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	}
	return fmt.Sprintf("Lifecycle(%d)", int(l))
}

// Valid reports whether l is one of the three defined lifecycles.
func (l Lifecycle) Valid() bool {
	_, err := toStorage(l)
	return err == nil
}

// ParseLifecycle maps "transient", "scoped" or "singleton" (any case) to a Lifecycle.
func ParseLifecycle(s string) (Lifecycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLifecycle, s)
}

// ── Storage policy ────────────────────────────────────────────────────────────

// storage says where a constructed instance is cached.
type storage int

const (
	storeNone  storage = iota + 1 // never cached
	storeScope                    // cached by the resolving scope
	storeRoot                     // cached by the root scope
)

// toStorage and fromStorage are the two halves of one bijection; every
// Lifecycle crossing into or out of the registry goes through them.
func toStorage(l Lifecycle) (storage, error) {
	switch l {
	case Transient:
		return storeNone, nil
	case Scoped:
		return storeScope, nil
	case Singleton:
		return storeRoot, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidLifecycle, int(l))
}

func fromStorage(s storage) (Lifecycle, error) {
	switch s {
	case storeNone:
		return Transient, nil
	case storeScope:
		return Scoped, nil
	case storeRoot:
		return Singleton, nil
	}
	return 0, fmt.Errorf("%w: storage %d", ErrInvalidLifecycle, int(s))
}
