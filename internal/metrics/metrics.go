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
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tulisify_http_requests_total",
		Help: "Total number of HTTP requests served by the API",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tulisify_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// UseCaseOutcomes counts use-case executions by operation and result
	// kind ("ok" for successes).
	UseCaseOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tulisify_usecase_outcomes_total",
		Help: "Use-case executions by operation and outcome",
	}, []string{"operation", "outcome"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tulisify_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	AssetDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tulisify_asset_deletions_total",
		Help: "Stored assets removed by background work",
	}, []string{"source"})
)

// Middleware records request counts and latencies. Paths are the route
// templates, so ids never become label values.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
