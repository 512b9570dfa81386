package task

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records task outcomes. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers task collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "task_runs_total",
			Help: "Total number of task runs by outcome.",
		}, []string{"task", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "task_duration_seconds",
			Help:    "Task execution duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
	}
}

func (m *Metrics) observe(name string, status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(name, status.String()).Inc()
	m.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) skipped(name string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(name, "SKIPPED").Inc()
}
