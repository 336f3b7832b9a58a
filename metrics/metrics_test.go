package metrics_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/mc-auth/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.RecordGrantCreated("code")
	m.RecordGrantCreated("code")
	m.RecordDecision(metrics.OutcomeGranted)
	m.RecordExchange(metrics.OutcomeInvalid)
	m.RecordReaped("grants", 0)
	m.RecordReaped("otps", 3)
	m.RecordHTTPRequest("/oauth2/token", 400, 10*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.GrantsCreatedTotal.WithLabelValues("code")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DecisionsTotal.WithLabelValues(metrics.OutcomeGranted)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ExchangesTotal.WithLabelValues(metrics.OutcomeInvalid)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.ReapedTotal.WithLabelValues("otps")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/oauth2/token", "4xx")))
}

func TestNoop(t *testing.T) {
	var r metrics.Recorder = metrics.NewNoop()
	r.RecordLogin(true)
	r.RecordProfileFetchFailure()
}
