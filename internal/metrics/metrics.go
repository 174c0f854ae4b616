// Package metrics registers the Prometheus instrumentation for opsboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// WebhookEventsTotal counts ingested call webhook events by normalized kind.
	WebhookEventsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_webhook_events_total",
			Help: "Call webhook events ingested, by normalized event kind",
		},
		[]string{"kind"},
	)

	// WebhookMalformedTotal counts webhook bodies that could not be parsed.
	// These are still acknowledged with 200 so the sender does not retry.
	WebhookMalformedTotal = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "opsboard_webhook_malformed_total",
			Help: "Webhook deliveries dropped because the body could not be parsed",
		},
	)

	// ProxyRequestsTotal counts outbound provider calls by provider and outcome.
	ProxyRequestsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_proxy_requests_total",
			Help: "Outbound provider API requests, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// ProxyRequestDuration observes outbound provider call latency.
	ProxyRequestDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsboard_proxy_request_duration_seconds",
			Help:    "Outbound provider API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// TokenRefreshTotal counts OAuth refresh exchanges by outcome.
	TokenRefreshTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_token_refresh_total",
			Help: "Field-service OAuth token refresh attempts, by outcome",
		},
		[]string{"outcome"},
	)

	// ActiveCalls tracks incoming calls currently ringing or in progress.
	ActiveCalls = promauto.With(registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "opsboard_active_calls",
			Help: "Incoming calls observed ringing but not yet completed",
		},
	)
)

// Handler returns the scrape handler for the opsboard registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
