package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"realtysite/internal/metrics"
)

func TestObserveTransition(t *testing.T) {
	before := testutil.ToFloat64(metrics.ContentTransitions.WithLabelValues("archive", "ok"))
	metrics.ObserveTransition("archive", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ContentTransitions.WithLabelValues("archive", "ok")))

	before = testutil.ToFloat64(metrics.ContentTransitions.WithLabelValues("archive", "error"))
	metrics.ObserveTransition("archive", "")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ContentTransitions.WithLabelValues("archive", "error")))
}

func TestObserveVisible(t *testing.T) {
	metrics.ObserveVisible("EVENT", time.Now(), 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.VisibleItems.WithLabelValues("EVENT")))
}
