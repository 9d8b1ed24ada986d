package providers

import (
	"errors"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/routing"
)

// Keys the framework providers bind.
const (
	ConfigKey   container.ServiceKey = "config"
	LoggerKey   container.ServiceKey = "log"
	RegistryKey container.ServiceKey = "metrics.registry"
	RouterKey   container.ServiceKey = "router"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration as "config".
// When Config is nil it is loaded from EnvFiles on first resolve.
//
// Bound keys:
//   - "config"  → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg, envFiles := p.Config, p.EnvFiles
	return app.Singleton(ConfigKey, func(container.Resolver) (any, error) {
		if cfg != nil {
			return cfg, nil
		}
		return config.Load(envFiles...), nil
	})
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the application logger as "log".
//
// Bound keys:
//   - "log"  → *zap.Logger
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return app.For(LoggerKey).As(container.Singleton).UseValue(log)
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus registry the container reports
// to. It is deferred: nothing is bound until "metrics.registry" is first
// resolved, which the diagnostics provider does when metrics are enabled.
//
// Bound keys:
//   - "metrics.registry"  → *prometheus.Registry
type MetricsServiceProvider struct {
	container.BaseProvider
	Registry *prometheus.Registry
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	if p.Registry == nil {
		return errors.New("providers: MetricsServiceProvider needs a Registry")
	}
	return app.For(RegistryKey).As(container.Singleton).UseValue(p.Registry)
}

func (p *MetricsServiceProvider) IsDeferred() bool { return true }
func (p *MetricsServiceProvider) Provides() []container.ServiceKey {
	return []container.ServiceKey{RegistryKey}
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Every request handled by
// it is logged on "log" and runs in its own container scope
// (routing.ScopePerRequest). The request id header is taken from
// Resolver.RequestIDHeader.
//
// Bound keys:
//   - "router"  → *routing.Router
//
// Depends on "config" and "log".
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	return app.Singleton(RouterKey, func(r container.Resolver) (any, error) {
		cfg, _, err := container.Resolve[*config.Config](r, ConfigKey)
		if err != nil {
			return nil, err
		}
		log, _, err := container.Resolve[*zap.Logger](r, LoggerKey)
		if err != nil {
			return nil, err
		}
		// chi reads the incoming id from a package-level header name.
		if cfg != nil && cfg.Resolver.RequestIDHeader != "" {
			middleware.RequestIDHeader = cfg.Resolver.RequestIDHeader
		}

		router := routing.New()
		router.Middleware(
			routing.RequestLogger(log),
			routing.ScopePerRequest(app, log),
		)
		return router, nil
	})
}
