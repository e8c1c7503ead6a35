package browse

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Sessions      prometheus.Gauge
	SearchApplied prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "browse_sessions",
			Help: "Live list screen sessions",
		}),
		SearchApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "browse_search_applied_total",
			Help: "Debounced search terms that reached the filter",
		}),
	}

	reg.MustRegister(m.Sessions, m.SearchApplied)
	return m
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}

func (m *Metrics) searchApplied() {
	if m == nil {
		return
	}
	m.SearchApplied.Inc()
}
