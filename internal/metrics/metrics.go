// Package metrics holds the prometheus collectors exported on /metrics.
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
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "morpheus",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "morpheus",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "morpheus",
		Name:      "registration_validations_total",
		Help:      "Registration validations by outcome reason.",
	}, []string{"reason"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "morpheus",
		Name:      "query_cache_lookups_total",
		Help:      "Query cache lookups by operation and result (hit, miss, error).",
	}, []string{"operation", "result"})
)

// Middleware records request counts and latency, keyed by the matched route
// template rather than the raw path.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func ObserveValidation(reason string) {
	validations.WithLabelValues(reason).Inc()
}

func ObserveCache(operation, result string) {
	cacheLookups.WithLabelValues(operation, result).Inc()
}
