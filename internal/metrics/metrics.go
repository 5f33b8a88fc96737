// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OutreachSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "togetherunite_outreach_sends_total",
			Help: "Outreach send attempts by result",
		},
		[]string{"result"},
	)

	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "togetherunite_feedback_events_total",
			Help: "Delivery feedback notifications processed by kind",
		},
		[]string{"type"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "togetherunite_webhook_events_total",
			Help: "Payment webhook events received by event type",
		},
		[]string{"type"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "togetherunite_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
