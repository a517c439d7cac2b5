// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ContentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtysite_content_transitions_total",
		Help: "Admin workflow operations by operation and outcome",
	}, []string{"op", "result"})

	TransitionRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtysite_content_transition_retries_total",
		Help: "Transitions retried after a concurrent write",
	})

	ContentUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtysite_content_uploads_total",
		Help: "Content creations by outcome",
	}, []string{"result"})

	VisibleQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "realtysite_visible_query_duration_seconds",
		Help:    "Time to answer a visibility query",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	VisibleItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "realtysite_visible_items",
		Help: "Items returned by the latest visibility query",
	}, []string{"kind"})
)

// ObserveTransition records one workflow operation. result is "ok" or an
// error kind.
func ObserveTransition(op, result string) {
	if result == "" {
		result = "error"
	}
	ContentTransitions.WithLabelValues(op, result).Inc()
}

func ObserveUpload(result string) {
	if result == "" {
		result = "error"
	}
	ContentUploads.WithLabelValues(result).Inc()
}

func ObserveVisible(kind string, started time.Time, count int) {
	VisibleQueryDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	VisibleItems.WithLabelValues(kind).Set(float64(count))
}
