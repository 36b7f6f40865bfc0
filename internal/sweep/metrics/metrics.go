package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles sweep metrics.
type Metrics struct {
	SweepsTotal     *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
	SubjectsAlerted prometheus.Counter
	Dispatches      *prometheus.CounterVec
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		SweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sakhi_sweeps_total",
				Help: "Total sweep passes by status",
			},
			[]string{"status"},
		),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sakhi_sweep_duration_seconds",
			Help:    "Sweep pass duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SubjectsAlerted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sakhi_subjects_alerted_total",
			Help: "Total subjects transitioned to disarmed after alerting",
		}),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sakhi_dispatches_total",
				Help: "Total dispatch attempts by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
	}
	prometheus.MustRegister(
		m.SweepsTotal,
		m.SweepDuration,
		m.SubjectsAlerted,
		m.Dispatches,
	)
	return m
}
