// Package metrics holds the Prometheus collectors shared by the HTTP layer, the
// shortening service and the click pipeline. Collectors register on the default
// registry, which /metrics serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	urlsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorturl_created_total",
			Help: "Short URLs created.",
		},
		[]string{"owner"},
	)

	redirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorturl_redirects_total",
			Help: "Successful short code resolutions.",
		},
	)

	quotaDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorturl_anonymous_quota_denied_total",
			Help: "Anonymous creations rejected by the quota.",
		},
	)

	clicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorturl_clicks_total",
			Help: "Click records by outcome (recorded, failed, dropped).",
		},
		[]string{"outcome"},
	)

	clickQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shorturl_click_queue_depth",
			Help: "Click jobs waiting for a worker.",
		},
	)
)

// ObserveHTTP records one finished request. path should be the route template.
func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func URLCreated(authenticated bool) {
	owner := "anonymous"
	if authenticated {
		owner = "user"
	}
	urlsCreatedTotal.WithLabelValues(owner).Inc()
}

func Redirect() { redirectsTotal.Inc() }

func QuotaDenied() { quotaDeniedTotal.Inc() }

func ClickRecorded() { clicksTotal.WithLabelValues("recorded").Inc() }

func ClickFailed() { clicksTotal.WithLabelValues("failed").Inc() }

func ClickDropped() { clicksTotal.WithLabelValues("dropped").Inc() }

func SetClickQueueDepth(n int) { clickQueueDepth.Set(float64(n)) }
