package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer records engine work in Prometheus collectors. Each observer owns its registry so a
// CLI run can write exactly its own numbers to a textfile-collector file.
type Observer struct {
	Registry *prometheus.Registry

	// EvaluationsTotal counts orchestrator calls by operation
	EvaluationsTotal *prometheus.CounterVec

	// SearchesTotal counts completed searches by operation
	SearchesTotal *prometheus.CounterVec

	// SearchDuration tracks search latency in seconds
	SearchDuration *prometheus.HistogramVec

	// SearchEvaluations tracks how many orchestrator calls a search needed
	SearchEvaluations *prometheus.HistogramVec
}

// NewObserver creates an observer with a fresh registry
func NewObserver() *Observer {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Observer{
		Registry: reg,
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxengine_evaluations_total",
				Help: "Total comprehensive tax evaluations by operation",
			},
			[]string{"operation"},
		),
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxengine_searches_total",
				Help: "Total completed searches by operation",
			},
			[]string{"operation"},
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taxengine_search_duration_seconds",
				Help:    "Search duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 60},
			},
			[]string{"operation"},
		),
		SearchEvaluations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taxengine_search_evaluations",
				Help:    "Tax evaluations per search",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"operation"},
		),
	}
}

// ObserveEvaluation counts one orchestrator call
func (o *Observer) ObserveEvaluation(op string) {
	o.EvaluationsTotal.WithLabelValues(op).Inc()
}

// ObserveSearch records a finished search
func (o *Observer) ObserveSearch(op string, elapsed time.Duration, evaluations int) {
	o.SearchesTotal.WithLabelValues(op).Inc()
	o.SearchDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	o.SearchEvaluations.WithLabelValues(op).Observe(float64(evaluations))
}

// WriteTextfile writes the registry in the node-exporter textfile format
func (o *Observer) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
