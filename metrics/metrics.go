package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives grant lifecycle and HTTP events.
type Recorder interface {
	RecordGrantCreated(responseType string)
	RecordDecision(outcome string)
	RecordExchange(outcome string)
	RecordTokenGenerationFailure(kind string)
	RecordProfileFetchFailure()
	RecordLogin(success bool)
	RecordReaped(kind string, n int64)
	RecordHTTPRequest(route string, status int, duration time.Duration)
}

// Decision and exchange outcomes.
const (
	OutcomeGranted  = "granted"
	OutcomeDenied   = "denied"
	OutcomeRejected = "rejected"
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
)

var _ Recorder = (*Metrics)(nil)

// Metrics holds the Prometheus collectors.
type Metrics struct {
	GrantsCreatedTotal          *prometheus.CounterVec
	DecisionsTotal              *prometheus.CounterVec
	ExchangesTotal              *prometheus.CounterVec
	TokenGenerationFailureTotal *prometheus.CounterVec
	ProfileFetchFailuresTotal   prometheus.Counter
	LoginsTotal                 *prometheus.CounterVec
	ReapedTotal                 *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GrantsCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_grants_created_total",
			Help: "Grants created at the authorize endpoint",
		}, []string{"response_type"}),
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_grant_decisions_total",
			Help: "Consent decisions by outcome",
		}, []string{"outcome"}),
		ExchangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_code_exchanges_total",
			Help: "Authorization code exchanges by outcome",
		}, []string{"outcome"}),
		TokenGenerationFailureTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_token_generation_failures_total",
			Help: "Token generation failures by token kind",
		}, []string{"kind"}),
		ProfileFetchFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mcauth_profile_fetch_failures_total",
			Help: "Failed Minecraft profile lookups after a token was issued",
		}),
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_logins_total",
			Help: "OTP login attempts by result",
		}, []string{"result"}),
		ReapedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_reaped_rows_total",
			Help: "Rows removed by the housekeeping reaper",
		}, []string{"kind"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcauth_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcauth_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) RecordGrantCreated(responseType string) {
	m.GrantsCreatedTotal.WithLabelValues(responseType).Inc()
}

func (m *Metrics) RecordDecision(outcome string) {
	m.DecisionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordExchange(outcome string) {
	m.ExchangesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTokenGenerationFailure(kind string) {
	m.TokenGenerationFailureTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordProfileFetchFailure() {
	m.ProfileFetchFailuresTotal.Inc()
}

func (m *Metrics) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordReaped(kind string, n int64) {
	if n > 0 {
		m.ReapedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
