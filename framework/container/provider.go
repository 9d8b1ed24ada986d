package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one area of the application.
//
// Register is called while the container is being configured. Boot is called
// after ALL providers have been registered and the container is built, making
// it safe to resolve other services inside Boot.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    return c.Singleton("mailer", func(r container.Resolver) (any, error) {
//	        return mail.New(), nil
//	    })
//	}
type ServiceProvider interface {
	Register(c *Container) error

	Boot(c *Container) error

	// Provides lists the keys a deferred provider registers.
	Provides() []ServiceKey

	// IsDeferred returns true if this provider should only be registered
	// when one of its Provides() keys is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []ServiceKey { return nil }
func (p *BaseProvider) IsDeferred() bool { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
	bootErr    error // first Boot failure, returned again by later calls
}

// deferredLoader runs a deferred provider once and then withdraws the
// placeholders standing in for its keys.
type deferredLoader struct {
	once         sync.Once
	err          error
	placeholders []*registration
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless
// deferred). Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	booted := r.booted
	r.mu.Unlock()

	if provider.IsDeferred() {
		return r.interceptDeferred(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	r.mu.Unlock()

	// Late providers are booted immediately.
	if booted {
		return r.boot(provider)
	}
	return nil
}

// interceptDeferred registers a placeholder for each key the provider
// provides. The first Resolve of any of them runs the provider's Register and
// removes every placeholder, leaving only the provider's own registrations.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) error {
	loader := &deferredLoader{}

	for _, key := range provider.Provides() {
		placeholder, err := r.app.register(Transient, key, Strategy{Factory: func(res Resolver) (any, error) {
			loader.once.Do(func() {
				if loader.err = r.load(provider); loader.err != nil {
					return
				}
				for _, p := range loader.placeholders {
					r.app.registry.removeID(p.id)
				}
			})
			if loader.err != nil {
				return nil, loader.err
			}
			if !r.app.Bound(key) {
				return nil, fmt.Errorf("%w: deferred %T did not register [%s]", ErrUnresolvedDependency, provider, key)
			}
			return res.Resolve(key)
		}})
		if err != nil {
			return err
		}
		loader.placeholders = append(loader.placeholders, placeholder)
	}
	return nil
}

func (r *ProviderRegistry) load(provider ServiceProvider) error {
	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}
	r.mu.Lock()
	booted := r.booted
	r.mu.Unlock()
	if booted {
		return r.boot(provider)
	}
	return nil
}

// Boot builds the container and calls Boot() on all eager providers.
// Must be called after ALL providers have been registered. Boot runs once:
// if a provider fails, that error is returned by every later call.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		err := r.bootErr
		r.mu.Unlock()
		return err
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	r.app.Build()
	for _, provider := range eager {
		if err := r.boot(provider); err != nil {
			r.mu.Lock()
			r.bootErr = err
			r.mu.Unlock()
			return err
		}
	}
	return nil
}

func (r *ProviderRegistry) boot(provider ServiceProvider) error {
	if err := provider.Boot(r.app); err != nil {
		return fmt.Errorf("container: boot %T: %w", provider, err)
	}
	return nil
}

// Booted returns true once Boot() has completed without error.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted && r.bootErr == nil
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
