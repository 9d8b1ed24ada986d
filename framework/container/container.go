package container

import (
	"fmt"
	"iter"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the service registry and resolver.
//
// Lifecycle of a container:
//  1. Configure: Register / Singleton / Scoped / Transient / Unregister
//  2. Build: creates the root scope and makes it current
//  3. Resolve, and CreateNewScope whenever a new unit of work starts
//
// Registering after Build is allowed but instances already cached for a key
// are not rebuilt.
type Container struct {
	registry registry

	mu      sync.RWMutex
	root    *Scope
	current *Scope

	log               *zap.Logger
	metrics           *Metrics
	disposeOnNewScope bool
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and scope events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records resolutions, constructions and scopes into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Container) { c.metrics = m }
}

// WithDisposeOnNewScope makes CreateNewScope end the scope it replaces.
// Off by default: the abandoned scope's instances may still be referenced.
func WithDisposeOnNewScope(on bool) Option {
	return func(c *Container) { c.disposeOnNewScope = on }
}

// New creates an empty, unbuilt container.
func New(opts ...Option) *Container {
	c := &Container{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configure creates a container, hands it to fn for registration and builds
// it once fn returns.
//
//	c, err := container.Configure(func(c *container.Container) error {
//	    return c.Singleton("clock", newClock)
//	})
func Configure(fn func(c *Container) error, opts ...Option) (*Container, error) {
	c := New(opts...)
	if err := fn(c); err != nil {
		return nil, err
	}
	return c.Build(), nil
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a registration for key. Registering a key again appends; the
// latest registration is the one Resolve uses.
func (c *Container) Register(l Lifecycle, key ServiceKey, s Strategy) error {
	_, err := c.register(l, key, s)
	return err
}

func (c *Container) register(l Lifecycle, key ServiceKey, s Strategy) (*registration, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	st, err := toStorage(l)
	if err != nil {
		return nil, err
	}
	if !s.valid() {
		return nil, fmt.Errorf("%w: [%s]", ErrNoStrategy, key)
	}

	reg := c.registry.add(key, st, s)
	c.log.Debug("service registered",
		zap.String("key", key.String()),
		zap.Stringer("lifecycle", l),
		zap.Bool("factory", s.Factory != nil),
	)
	return reg, nil
}

// RegisterFactory registers key with a factory strategy.
func (c *Container) RegisterFactory(l Lifecycle, key ServiceKey, f Factory) error {
	return c.Register(l, key, Strategy{Factory: f})
}

// RegisterConcrete registers key with a concrete-type strategy.
func (c *Container) RegisterConcrete(l Lifecycle, key ServiceKey, concrete *Concrete) error {
	return c.Register(l, key, Strategy{Concrete: concrete})
}

// Singleton registers a factory whose result is shared by every scope.
//
//	c.Singleton("config", func(r container.Resolver) (any, error) {
//	    return config.Load(), nil
//	})
func (c *Container) Singleton(key ServiceKey, f Factory) error {
	return c.RegisterFactory(Singleton, key, f)
}

// Scoped registers a factory whose result is shared within one scope.
func (c *Container) Scoped(key ServiceKey, f Factory) error {
	return c.RegisterFactory(Scoped, key, f)
}

// Transient registers a factory called on every Resolve.
func (c *Container) Transient(key ServiceKey, f Factory) error {
	return c.RegisterFactory(Transient, key, f)
}

// Unregister removes the first registration for key. Absent keys are ignored.
func (c *Container) Unregister(key ServiceKey) {
	if c.registry.remove(key) {
		c.log.Debug("service unregistered", zap.String("key", key.String()))
	}
}

// Bound reports whether key has at least one registration.
func (c *Container) Bound(key ServiceKey) bool {
	_, ok := c.registry.latest(key)
	return ok
}

// GetRegistrations yields every registration in registration order. Each
// range over the result re-reads the registry.
//
//	for info, err := range c.GetRegistrations() { ... }
func (c *Container) GetRegistrations() iter.Seq2[RegistrationInfo, error] {
	return c.registry.infos()
}

// ── Build & scopes ────────────────────────────────────────────────────────────

// Build creates the root scope and makes it current. Later calls return c
// unchanged.
func (c *Container) Build() *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.root != nil {
		return c
	}
	c.root = newScope(c, nil)
	c.current = c.root
	c.metrics.scopeCreated()
	c.log.Debug("container built", zap.String("root", c.root.id))
	return c
}

// Built reports whether Build has been called.
func (c *Container) Built() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root != nil
}

// Root returns the root scope.
func (c *Container) Root() (*Scope, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.root == nil {
		return nil, ErrNotBuilt
	}
	return c.root, nil
}

// Current returns the scope Resolve currently uses.
func (c *Container) Current() (*Scope, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, ErrNotBuilt
	}
	return c.current, nil
}

// NewScope derives a child of the root scope without changing the current
// scope. Callers own the returned scope and should End it.
func (c *Container) NewScope() (*Scope, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	s := newScope(c, root)
	c.metrics.scopeCreated()
	c.log.Debug("scope created", zap.String("scope", s.id))
	return s, nil
}

// CreateNewScope derives a child of the root scope and makes it current.
// The previous current scope is dropped; with WithDisposeOnNewScope it is
// also ended. The root scope is never ended here.
//
// Goroutines resolving Scoped services through c while another calls
// CreateNewScope may observe either scope. Serialize the two, or pass
// explicit scopes from NewScope instead.
func (c *Container) CreateNewScope() (*Scope, error) {
	s, err := c.NewScope()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	prev := c.current
	c.current = s
	c.mu.Unlock()

	if c.disposeOnNewScope && prev != nil && !prev.IsRoot() {
		if err := prev.End(); err != nil {
			c.log.Warn("ending replaced scope", zap.String("scope", prev.id), zap.Error(err))
		}
	}
	return s, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve produces an instance for key from the current scope. It returns
// (nil, nil) when key is not registered.
//
//	svc, err := c.Resolve("mailer")
//	if err != nil { ... }
//	if svc == nil { /* not registered */ }
func (c *Container) Resolve(key ServiceKey) (any, error) {
	s, err := c.Current()
	if err != nil {
		return nil, err
	}
	return s.Resolve(key)
}

// ResolveAll produces one instance per registration of key from the current
// scope, oldest registration first.
func (c *Container) ResolveAll(key ServiceKey) ([]any, error) {
	s, err := c.Current()
	if err != nil {
		return nil, err
	}
	return s.ResolveAll(key)
}

// Shutdown ends the current scope and then the root scope, disposing
// Scoped and Singleton instances. The container cannot resolve afterwards.
func (c *Container) Shutdown() error {
	c.mu.RLock()
	root, current := c.root, c.current
	c.mu.RUnlock()
	if root == nil {
		return nil
	}

	var err error
	if current != nil && current != root {
		err = current.End()
	}
	return multierr.Append(err, root.End())
}
