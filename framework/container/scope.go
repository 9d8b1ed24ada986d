package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Disposable is implemented by services holding resources. Scope.End calls
// Dispose on every cached instance that implements it.
type Disposable interface {
	Dispose() error
}

// Scope is a resolution context. It caches Scoped instances for its own
// lifetime and forwards Singletons to the root scope.
//
//	scope, err := c.NewScope()
//	if err != nil { ... }
//	defer scope.End()
//	uow, _, err := container.Resolve[*UnitOfWork](scope, "uow")
type Scope struct {
	id        string
	container *Container
	root      *Scope // nil for the root scope itself

	mu      sync.Mutex
	entries map[uint64]*instanceEntry
	created []any // creation order, for End
	ended   bool
}

// instanceEntry guards construction of one cached instance. A failed
// construction leaves ok false so the next Resolve retries.
type instanceEntry struct {
	mu    sync.Mutex
	value any
	ok    bool
}

func newScope(c *Container, root *Scope) *Scope {
	return &Scope{
		id:        uuid.NewString(),
		container: c,
		root:      root,
		entries:   make(map[uint64]*instanceEntry),
	}
}

// ID is a random identifier, stable for the scope's lifetime.
func (s *Scope) ID() string { return s.id }

// IsRoot reports whether s is the container's root scope.
func (s *Scope) IsRoot() bool { return s.root == nil }

// Ended reports whether End has been called.
func (s *Scope) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *Scope) rootScope() *Scope {
	if s.root == nil {
		return s
	}
	return s.root
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve produces an instance for the latest registration of key.
// It returns (nil, nil) when key is not registered.
func (s *Scope) Resolve(key ServiceKey) (any, error) {
	if s.Ended() {
		return nil, ErrScopeEnded
	}
	reg, ok := s.container.registry.latest(key)
	if !ok {
		s.container.metrics.resolved("none", outcomeAbsent)
		return nil, nil
	}
	return s.instance(reg)
}

// ResolveAll produces one instance per registration of key, oldest first.
func (s *Scope) ResolveAll(key ServiceKey) ([]any, error) {
	if s.Ended() {
		return nil, ErrScopeEnded
	}
	regs := s.container.registry.all(key)
	out := make([]any, 0, len(regs))
	for _, reg := range regs {
		v, err := s.instance(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Scope) instance(reg *registration) (any, error) {
	l, err := fromStorage(reg.storage)
	if err != nil {
		return nil, &ResolutionError{Key: reg.key, Lifecycle: l, Err: err}
	}

	var v any
	switch reg.storage {
	case storeNone:
		v, err = s.construct(reg, l)
	case storeScope:
		v, err = s.cached(reg, l)
	case storeRoot:
		v, err = s.rootScope().cached(reg, l)
	}

	if err != nil {
		s.container.metrics.resolved(l.String(), outcomeFailed)
		return nil, err
	}
	s.container.metrics.resolved(l.String(), outcomeResolved)
	return v, nil
}

// cached returns the instance s holds for reg, constructing it at most once.
func (s *Scope) cached(reg *registration, l Lifecycle) (any, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, ErrScopeEnded
	}
	e, ok := s.entries[reg.id]
	if !ok {
		e = &instanceEntry{}
		s.entries[reg.id] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ok {
		return e.value, nil
	}

	v, err := s.construct(reg, l)
	if err != nil {
		return nil, err
	}

	// End may have run while the constructor did; the instance is then ours
	// to dispose.
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		s.discard(reg, v)
		return nil, ErrScopeEnded
	}
	e.value, e.ok = v, true
	s.created = append(s.created, v)
	s.mu.Unlock()
	return v, nil
}

func (s *Scope) discard(reg *registration, v any) {
	d, ok := v.(Disposable)
	if !ok {
		return
	}
	if err := d.Dispose(); err != nil {
		s.container.log.Warn("disposing instance built after scope end",
			zap.String("key", reg.key.String()),
			zap.String("scope", s.id),
			zap.Error(err),
		)
	}
}

// construct runs reg's strategy with s as the resolver.
func (s *Scope) construct(reg *registration, l Lifecycle) (any, error) {
	v, err := s.build(reg)
	if err == nil && isEmpty(v) {
		err = ErrConstructionProducedEmpty
	}
	if err != nil {
		s.container.log.Warn("construction failed",
			zap.String("key", reg.key.String()),
			zap.Stringer("lifecycle", l),
			zap.String("scope", s.id),
			zap.Error(err),
		)
		return nil, &ResolutionError{Key: reg.key, Lifecycle: l, Err: err}
	}
	s.container.metrics.constructed(l.String())
	return v, nil
}

func (s *Scope) build(reg *registration) (any, error) {
	if f := reg.strategy.Factory; f != nil {
		return f(s)
	}

	c := reg.strategy.Concrete
	deps := make([]any, len(c.DependsOn))
	for i, key := range c.DependsOn {
		dep, err := s.Resolve(key)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			return nil, fmt.Errorf("%w: %s needs [%s]", ErrUnresolvedDependency, c.Name, key)
		}
		deps[i] = dep
	}
	return c.New(deps)
}

// isEmpty treats a nil interface and a typed nil as no instance.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// ── Teardown ──────────────────────────────────────────────────────────────────

// End disposes every cached instance implementing Disposable, newest first,
// and makes the scope unusable. Transient instances belong to their callers
// and are never disposed here. Calling End twice is a no-op.
func (s *Scope) End() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	created := s.created
	s.created = nil
	s.entries = nil
	s.mu.Unlock()

	var err error
	for i := len(created) - 1; i >= 0; i-- {
		d, ok := created[i].(Disposable)
		if !ok {
			continue
		}
		if derr := d.Dispose(); derr != nil {
			err = multierr.Append(err, fmt.Errorf("dispose %T: %w", created[i], derr))
		}
	}

	s.container.metrics.scopeEnded()
	s.container.log.Debug("scope ended",
		zap.String("scope", s.id),
		zap.Bool("root", s.IsRoot()),
		zap.Int("instances", len(created)),
		zap.Error(err),
	)
	return err
}
