package container

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeResolved = "resolved"
	outcomeAbsent   = "absent"
	outcomeFailed   = "failed"
)

// Metrics holds the Prometheus collectors a Container reports to. A nil
// *Metrics records nothing.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	constructions *prometheus.CounterVec
	scopesCreated prometheus.Counter
	scopesActive  prometheus.Gauge
}

// NewMetrics creates the resolver collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resolver",
			Name:      "resolutions_total",
			Help:      "Resolve calls by lifecycle and outcome.",
		}, []string{"lifecycle", "outcome"}),
		constructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resolver",
			Name:      "constructions_total",
			Help:      "Instances built by a construction strategy, by lifecycle.",
		}, []string{"lifecycle"}),
		scopesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resolver",
			Name:      "scopes_created_total",
			Help:      "Scopes created, including root scopes.",
		}),
		scopesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resolver",
			Name:      "scopes_active",
			Help:      "Scopes created and not yet ended.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, col := range []prometheus.Collector{m.resolutions, m.constructions, m.scopesCreated, m.scopesActive} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) resolved(lifecycle, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(lifecycle, outcome).Inc()
}

func (m *Metrics) constructed(lifecycle string) {
	if m == nil {
		return
	}
	m.constructions.WithLabelValues(lifecycle).Inc()
}

func (m *Metrics) scopeCreated() {
	if m == nil {
		return
	}
	m.scopesCreated.Inc()
	m.scopesActive.Inc()
}

func (m *Metrics) scopeEnded() {
	if m == nil {
		return
	}
	m.scopesActive.Dec()
}
