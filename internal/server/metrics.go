package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so tests can build as many
// servers as they like.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	analyses        *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	grpcRequests    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_analyses_total",
			Help: "Document analyses by mode and by the path (ai or fallback) that produced them.",
		}, []string{"mode", "source"}),
		analysisLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_analysis_duration_seconds",
			Help:    "Time spent normalizing extracted text, AI call included.",
			Buckets: []float64{0.01, 0.05, 0.25, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
		grpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_grpc_requests_total",
			Help: "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestLatency,
		m.analyses,
		m.analysisLatency,
		m.grpcRequests,
	)
	return m
}

// ObserveAnalysis records which path produced an analysis.
func (m *Metrics) ObserveAnalysis(mode, source string, elapsed time.Duration) {
	m.analyses.WithLabelValues(mode, source).Inc()
	m.analysisLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
