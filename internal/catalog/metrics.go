package catalog

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Products prometheus.Gauge
	Writes   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products currently in the catalog",
		}),
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_product_writes_total",
				Help: "Product add/edit operations",
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.Products, m.Writes)
	return m
}

func (m *Metrics) write(op string, size int) {
	if m == nil {
		return
	}
	m.Writes.WithLabelValues(op).Inc()
	m.Products.Set(float64(size))
}
