package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/logging"
	"github.com/km-arc/go-resolver/framework/providers"
	"github.com/km-arc/go-resolver/framework/routing"
)

var (
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

const shutdownTimeout = 10 * time.Second

// Application is the top-level application. It embeds the Container and
// ProviderRegistry so user code can call app.Singleton(), app.Resolve() and
// app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	cfg     *config.Config
	log     *zap.Logger
	metrics *prometheus.Registry
	banner  io.Writer

	bootOnce sync.Once
	bootErr  error
}

// New loads configuration, builds the logger and metrics, and registers the
// framework providers. The container is built by Boot.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	return NewWithConfig(cfg)
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	opts := []container.Option{
		container.WithLogger(log.Named("container")),
		container.WithDisposeOnNewScope(cfg.Resolver.DisposeOnNewScope),
	}

	var reg *prometheus.Registry
	if cfg.Resolver.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := container.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, container.WithMetrics(m))
	}

	c := container.New(opts...)
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		cfg:       cfg,
		log:       log,
		metrics:   reg,
		banner:    os.Stdout,
	}

	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LogServiceProvider{Logger: log},
		&providers.RoutingServiceProvider{},
	}
	if reg != nil {
		core = append(core, &providers.MetricsServiceProvider{Registry: reg})
	}
	for _, p := range core {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot builds the container and runs the Boot() phase on all providers.
// The diagnostics routes are added last so user providers can still add
// router middleware in Register. Boot runs once; a failure is returned again
// by every later call, including Router and Run.
func (a *Application) Boot() error {
	a.bootOnce.Do(func() {
		if a.bootErr = a.Register(&providers.DiagnosticsServiceProvider{}); a.bootErr != nil {
			return
		}
		a.bootErr = a.Providers.Boot()
	})
	return a.bootErr
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Router resolves *routing.Router from the container. It boots the
// application first if needed.
func (a *Application) Router() (*routing.Router, error) {
	if err := a.Boot(); err != nil {
		return nil, err
	}
	router, ok, err := container.Resolve[*routing.Router](a.Container, providers.RouterKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("app: no router bound under [%s]", providers.RouterKey)
	}
	return router, nil
}

// Run boots the application (if needed) and serves HTTP on APP_PORT until ctx
// is cancelled, then drains in-flight requests and shuts the container down.
func (a *Application) Run(ctx context.Context) error {
	router, err := a.Router()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+a.cfg.App.Port)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln, router)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	fmt.Fprintf(a.banner, "%s  %s running on %s  %s\n",
		green("▶"), a.cfg.App.Name, cyan("http://"+ln.Addr().String()), gray("["+a.cfg.App.Env+"]"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return multierr.Append(err, a.Shutdown())
	case <-ctx.Done():
	}

	a.log.Info("shutting down", zap.String("app", a.cfg.App.Name))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	return multierr.Combine(err, a.Shutdown(), ignoreSyncError(a.log.Sync()))
}

// Shutdown disposes the container's scoped and singleton instances.
func (a *Application) Shutdown() error {
	return a.Container.Shutdown()
}

// ignoreSyncError drops the error zap returns when syncing a terminal.
func ignoreSyncError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return nil
	}
	return err
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.cfg.IsProduction() }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
