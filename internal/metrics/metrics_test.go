package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()

	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.RecordAttempt("sign_upload", "project-files", time.Millisecond, errors.New("boom"))
	o.RecordAttempt("sign_upload", "avatars", time.Millisecond, nil)
	o.RecordFallback("sign_upload")
	o.RecordStage("negotiate", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(o.attemptErrors.WithLabelValues("sign_upload", "project-files")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.attemptErrors.WithLabelValues("sign_upload", "avatars")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.fallbacks.WithLabelValues("sign_upload")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.stageErrors.WithLabelValues("negotiate")))
}

func TestPrometheusObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	second, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	second.RecordFallback("sign_read")
	assert.Equal(t, 1.0, testutil.ToFloat64(first.fallbacks.WithLabelValues("sign_read")))
}

func TestNilObserverIsSafe(t *testing.T) {
	var o *PrometheusObserver

	assert.NotPanics(t, func() {
		o.RecordAttempt("stat", "b", time.Second, nil)
		o.RecordStage("record", time.Second, nil)
		o.RecordFallback("stat")
	})
}
