package command

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "cmdbridge_"

// Metrics records dispatch outcomes and pool occupancy.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	dispatches *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewMetrics registers dispatch metrics on reg. Pool gauges are read on scrape.
func NewMetrics(reg prometheus.Registerer, pool *Pool) (*Metrics, error) {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dispatch_total",
				Help: "Total command dispatches by command name and outcome",
			},
			[]string{"command", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dispatch_duration_seconds",
				Help:    "Time from submission to outcome in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}

	collectors := []prometheus.Collector{
		m.dispatches,
		m.latency,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "pool_workers",
			Help: "Fixed number of dispatch worker slots",
		}, func() float64 { return float64(pool.Workers()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "pool_running",
			Help: "Remote calls currently in flight",
		}, func() float64 { return float64(pool.Running()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "pool_queued",
			Help: "Dispatches waiting for a worker slot",
		}, func() float64 { return float64(pool.Queued()) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observe(commandName string, o Outcome) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(commandName, o.Kind.String()).Inc()
	m.latency.WithLabelValues(commandName).Observe(o.Latency.Seconds())
}
