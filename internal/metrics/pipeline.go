// Package metrics exposes Prometheus collectors for indexing runs and the ops server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cellindex"

// Individual outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Pipeline holds the indexing run metrics. A nil *Pipeline records nothing,
// so callers never need to guard.
type Pipeline struct {
	individuals   *prometheus.CounterVec
	documents     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	queryDuration *prometheus.HistogramVec
	backfilled    prometheus.Counter
}

// NewPipeline creates the pipeline metrics and registers them with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	m := &Pipeline{
		individuals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "individuals_total",
			Help:      "Individuals processed by outcome",
		}, []string{"status"}),

		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents handed to the sink by kind",
		}, []string{"type"}),

		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 1800},
		}, []string{"stage"}),

		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_query_duration_seconds",
			Help:      "Graph query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"query"}),

		backfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfilled_roots_total",
			Help:      "Root documents linked to an All cells anchor",
		}),
	}

	reg.MustRegister(
		m.individuals, m.documents,
		m.stageDuration, m.queryDuration,
		m.backfilled,
	)
	return m
}

// Individual counts one processed individual.
func (m *Pipeline) Individual(status string) {
	if m == nil {
		return
	}
	m.individuals.WithLabelValues(status).Inc()
}

// Documents counts n documents of one kind.
func (m *Pipeline) Documents(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.documents.WithLabelValues(kind).Add(float64(n))
}

// Stage records how long a stage took.
func (m *Pipeline) Stage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Query records how long a graph query took.
func (m *Pipeline) Query(query string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// Backfilled counts root documents linked during backfill.
func (m *Pipeline) Backfilled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.backfilled.Add(float64(n))
}
