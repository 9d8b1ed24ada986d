package container

// RegistrationBuilder implements the fluent registration API.
//
//	c.For("mailer").As(container.Scoped).Implements(smtpMailer).Use()
//	c.For("clock").As(container.Singleton).UseFactory(func(r container.Resolver) (any, error) {
//	    return clock.New(), nil
//	})
type RegistrationBuilder struct {
	container *Container
	key       ServiceKey
	lifecycle Lifecycle
	concrete  *Concrete
}

// For starts a registration for key. The lifecycle defaults to Transient.
func (c *Container) For(key ServiceKey) *RegistrationBuilder {
	return &RegistrationBuilder{container: c, key: key, lifecycle: Transient}
}

// As sets the lifecycle.
func (b *RegistrationBuilder) As(l Lifecycle) *RegistrationBuilder {
	b.lifecycle = l
	return b
}

// Implements names the concrete implementation behind the key.
func (b *RegistrationBuilder) Implements(concrete *Concrete) *RegistrationBuilder {
	b.concrete = concrete
	return b
}

// Use registers the concrete implementation given to Implements.
func (b *RegistrationBuilder) Use() error {
	return b.container.Register(b.lifecycle, b.key, Strategy{Concrete: b.concrete})
}

// UseFactory registers f. A concrete given to Implements is kept for
// GetRegistrations but f builds the instances.
func (b *RegistrationBuilder) UseFactory(f Factory) error {
	return b.container.Register(b.lifecycle, b.key, Strategy{Concrete: b.concrete, Factory: f})
}

// UseValue is a shorthand for UseFactory when the instance already exists.
//
//	c.For("storagePath").As(container.Singleton).UseValue("/tmp/photos")
func (b *RegistrationBuilder) UseValue(value any) error {
	return b.UseFactory(func(Resolver) (any, error) { return value, nil })
}
