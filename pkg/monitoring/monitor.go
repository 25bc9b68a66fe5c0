package monitoring

import (
	"strconv"
	"sync"
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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 统计接口请求
	StatsFetchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_fetch_total",
			Help: "Total number of stats endpoint fetches",
		},
		[]string{"range", "outcome"},
	)

	StatsFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stats_fetch_duration_seconds",
			Help:    "Duration of stats endpoint fetches",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"range"},
	)

	// 被更新请求取代而丢弃的结果
	StaleResultCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_fetch_superseded_total",
			Help: "Fetch results discarded because a newer selection was issued",
		},
	)

	ViewSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_view_subscribers",
			Help: "Number of connected view websocket clients",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(StatsFetchCounter)
		prometheus.MustRegister(StatsFetchDuration)
		prometheus.MustRegister(StaleResultCounter)
		prometheus.MustRegister(ViewSubscribers)
	})
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
