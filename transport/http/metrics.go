package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects dev backend counters
type Metrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	logins      prometheus.Counter
	uploads     prometheus.Counter
	uploadBytes prometheus.Counter
	rateLimited prometheus.Counter
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_dev_http_requests_total",
			Help: "Requests served by route, method and status",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "academy_dev_http_request_seconds",
			Help:    "Request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_dev_logins_total",
			Help: "Successful SIWE verifications",
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_dev_uploads_total",
			Help: "Video files received by the upload sink",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_dev_upload_bytes_total",
			Help: "Video bytes received by the upload sink",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_dev_rate_limited_total",
			Help: "Requests rejected by the nonce rate limiter",
		}),
	}

	reg.MustRegister(m.requests, m.latency, m.logins, m.uploads, m.uploadBytes, m.rateLimited)
	return m
}

// Middleware records every request under its route pattern
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordLogin() { m.logins.Inc() }

func (m *Metrics) RecordUpload(size int64) {
	m.uploads.Inc()
	m.uploadBytes.Add(float64(size))
}

func (m *Metrics) RecordRateLimited() { m.rateLimited.Inc() }

// Handler serves the Prometheus scrape endpoint
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
