package providers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/routing"
)

// DiagnosticsServiceProvider exposes the container over HTTP once booted:
//
//	GET /registrations[?key=...]  every registration, in order
//	GET /metrics                  Prometheus exposition, when enabled
type DiagnosticsServiceProvider struct {
	container.BaseProvider
}

func (p *DiagnosticsServiceProvider) Register(*container.Container) error { return nil }

func (p *DiagnosticsServiceProvider) Boot(app *container.Container) error {
	router, ok, err := container.Resolve[*routing.Router](app, RouterKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	router.Get("/registrations", RegistrationsHandler(app))

	cfg, _, err := container.Resolve[*config.Config](app, ConfigKey)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.Resolver.Metrics {
		return nil
	}
	reg, ok, err := container.Resolve[*prometheus.Registry](app, RegistryKey)
	if err != nil || !ok {
		return err
	}
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return nil
}

type registrationView struct {
	Key          string `json:"key"`
	ConcreteType string `json:"concrete_type,omitempty"`
	Lifecycle    string `json:"lifecycle"`
}

// RegistrationsHandler lists c's registrations as JSON, optionally filtered
// by the "key" query parameter.
func RegistrationsHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
		filter := req.Query("key")

		views := []registrationView{}
		for info, err := range c.GetRegistrations() {
			if err != nil {
				res.ServerError(err.Error())
				return
			}
			if filter != "" && info.Key.String() != filter {
				continue
			}
			views = append(views, registrationView{
				Key:          info.Key.String(),
				ConcreteType: info.ConcreteType,
				Lifecycle:    info.Lifecycle.String(),
			})
		}
		res.Success(views)
	}
}
