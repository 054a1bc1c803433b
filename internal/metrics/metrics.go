// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route", "method"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	generationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_content_generation_failures_total",
			Help: "Content collaborator failures by operation",
		},
		[]string{"operation"},
	)

	reviewScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_review_score_percent",
			Help:    "Distribution of review scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_events_dropped_total",
			Help: "Domain events dropped before publishing",
		},
		[]string{"reason"},
	)
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RateLimited(limiter string) { rateLimited.WithLabelValues(limiter).Inc() }

func GenerationFailed(operation string) { generationFailures.WithLabelValues(operation).Inc() }

func ReviewScored(score int) { reviewScores.Observe(float64(score)) }

func EventDropped(reason string) { eventsDropped.WithLabelValues(reason).Inc() }
