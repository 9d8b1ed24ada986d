// Package container provides a service registry and resolver with
// Transient, Scoped and Singleton lifecycles.
//
// # Overview
//
// Services are registered under a ServiceKey together with a lifecycle and a
// construction strategy: a Factory closure, a Concrete implementation built
// from declared dependencies, or both (the factory wins). Go has no runtime
// constructor reflection, so dependencies are always declared explicitly.
//
// # Container Lifecycle
//
//  1. Create:   c := container.New(container.WithLogger(log))
//  2. Register: c.Singleton(...), c.Scoped(...), c.Transient(...)
//  3. Build:    c.Build()  creates the root scope
//  4. Resolve:  c.Resolve("key")  resolves from the current scope
//  5. Scopes:   c.CreateNewScope()  replaces the current scope
//  6. Shutdown: c.Shutdown()  disposes scoped and singleton instances
//
// # Registrations
//
//	// Transient: new instance every Resolve
//	c.Transient("id", func(r container.Resolver) (any, error) { return uuid.New(), nil })
//
//	// Scoped: one instance per scope
//	c.Scoped("uow", func(r container.Resolver) (any, error) { return &UnitOfWork{}, nil })
//
//	// Singleton: created once, shared by every scope
//	c.Singleton("clock", func(r container.Resolver) (any, error) { return clock.New(), nil })
//
//	// Concrete type with declared dependencies
//	c.RegisterConcrete(container.Scoped, "repo", &container.Concrete{
//	    Name:      "SQLRepository",
//	    DependsOn: []container.ServiceKey{"db"},
//	    New: func(deps []any) (any, error) {
//	        return &SQLRepository{DB: deps[0].(*sql.DB)}, nil
//	    },
//	})
//
//	// Fluent
//	c.For("storagePath").As(container.Singleton).UseValue("/tmp/photos")
//
// Registering a key again appends a registration; Resolve uses the latest and
// ResolveAll returns all of them. Unregister removes the first one.
//
// # Resolving
//
//	// Untyped; (nil, nil) when nothing is registered
//	raw, err := c.Resolve("cache")
//
//	// Generic
//	cache, ok, err := container.Resolve[*RedisCache](c, "cache")
//
// A construction that returns nil fails with ErrConstructionProducedEmpty.
// Resolving before Build fails with ErrNotBuilt.
//
// # Scopes
//
// The container has one current scope. CreateNewScope replaces it, which is
// convenient for sequential units of work. Concurrent work such as HTTP
// requests should take an explicit scope instead:
//
//	scope, err := c.NewScope()
//	defer scope.End()
//	ctx = container.WithScope(ctx, scope)
//
// Scope.End disposes cached instances implementing Disposable, newest first.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    return c.Singleton("mailer", func(r container.Resolver) (any, error) {
//	        cfg := container.MustResolve[*config.Config](r, "config")
//	        return mail.NewSMTP(cfg.Mail), nil
//	    })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot() // builds c, then boots providers
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool                { return true }
//	func (p *HeavyProvider) Provides() []container.ServiceKey { return []container.ServiceKey{"heavy"} }
//	func (p *HeavyProvider) Register(c *container.Container) error {
//	    return c.Singleton("heavy", func(r container.Resolver) (any, error) {
//	        return heavySetup() // only called on first Resolve("heavy")
//	    })
//	}
package container
