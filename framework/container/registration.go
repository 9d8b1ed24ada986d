package container

import (
	"iter"
	"slices"
	"sync"
)

// ── Construction strategies ───────────────────────────────────────────────────

// Resolver is the read side of the container handed to factories. Resolve
// returns (nil, nil) when nothing is registered under key.
type Resolver interface {
	Resolve(key ServiceKey) (any, error)
}

// Factory builds an instance. It receives the scope performing the
// resolution, so it may resolve its own dependencies.
//
//	c.Singleton("cache", func(r container.Resolver) (any, error) {
//	    cfg, _, err := container.Resolve[*config.Config](r, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.New(cfg), nil
//	})
type Factory func(r Resolver) (any, error)

// Concrete describes an implementation built from its declared dependencies.
// Each key in DependsOn is resolved in order and handed to New.
//
//	repo := &container.Concrete{
//	    Name:      "EloquentUserRepository",
//	    DependsOn: []container.ServiceKey{"db"},
//	    New: func(deps []any) (any, error) {
//	        return &EloquentUserRepository{DB: deps[0].(*sql.DB)}, nil
//	    },
//	}
type Concrete struct {
	Name      string
	DependsOn []ServiceKey
	New       func(deps []any) (any, error)
}

// Strategy is how a registration produces instances. When both fields are
// set the factory wins and Concrete only names the implementation.
type Strategy struct {
	Concrete *Concrete
	Factory  Factory
}

func (s Strategy) valid() bool {
	return s.Factory != nil || (s.Concrete != nil && s.Concrete.New != nil)
}

// ── Registry ──────────────────────────────────────────────────────────────────

// registration is one entry of the registry. id identifies its instance
// caches, so re-registering a key never reuses the old entry's instances.
type registration struct {
	id       uint64
	key      ServiceKey
	storage  storage
	strategy Strategy
}

// RegistrationInfo is the public view of a registration.
type RegistrationInfo struct {
	Key          ServiceKey
	ConcreteType string
	Lifecycle    Lifecycle
}

// registry keeps registrations in insertion order.
type registry struct {
	mu      sync.RWMutex
	entries []*registration
	nextID  uint64
}

func (r *registry) add(key ServiceKey, st storage, s Strategy) *registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	reg := &registration{id: r.nextID, key: key, storage: st, strategy: s}
	r.entries = append(r.entries, reg)
	return reg
}

// remove drops the first registration for key.
func (r *registry) remove(key ServiceKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.entries, func(reg *registration) bool { return reg.key == key })
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

// removeID drops the registration with the given id.
func (r *registry) removeID(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.entries, func(reg *registration) bool { return reg.id == id })
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

// latest returns the most recent registration for key.
func (r *registry) latest(key ServiceKey) (*registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].key == key {
			return r.entries[i], true
		}
	}
	return nil, false
}

func (r *registry) all(key ServiceKey) []*registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*registration
	for _, reg := range r.entries {
		if reg.key == key {
			out = append(out, reg)
		}
	}
	return out
}

func (r *registry) snapshot() []*registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// infos yields a RegistrationInfo per entry, re-reading the registry each
// time the sequence is ranged over.
func (r *registry) infos() iter.Seq2[RegistrationInfo, error] {
	return func(yield func(RegistrationInfo, error) bool) {
		for _, reg := range r.snapshot() {
			l, err := fromStorage(reg.storage)
			info := RegistrationInfo{Key: reg.key, Lifecycle: l}
			if reg.strategy.Concrete != nil {
				info.ConcreteType = reg.strategy.Concrete.Name
			}
			if !yield(info, err) {
				return
			}
		}
	}
}
