package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// GateCompletions counts gate state transitions by outcome
	// (credited, capped, uncompleted, rejected).
	GateCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raid_gate_completions_total",
			Help: "Gate completion state transitions",
		},
		[]string{"result"},
	)

	PartyCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raid_party_completions_total",
			Help: "Party completions recorded and cancelled",
		},
		[]string{"action"},
	)

	PartyRecommendations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raid_party_recommendations",
			Help:    "Number of full parties produced per recommendation",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(GateCompletions)
	prometheus.MustRegister(PartyCompletions)
	prometheus.MustRegister(PartyRecommendations)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
