package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the relay's collectors. A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	RequestCounter *prometheus.CounterVec
	ResponseTime   *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	FetchCounter   *prometheus.CounterVec
	FetchTime      *prometheus.HistogramVec
	ModelCalls     *prometheus.CounterVec
	ModelTime      prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		ResponseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_http_response_time_seconds",
			Help:    "HTTP response time in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "path"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_cache_lookups_total",
			Help: "URL cache lookups by content kind and result.",
		}, []string{"kind", "result"}),
		FetchCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_fetch_total",
			Help: "Outbound content fetches by outcome.",
		}, []string{"kind", "status"}),
		FetchTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_fetch_duration_seconds",
			Help:    "Fetch plus decode time in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_model_calls_total",
			Help: "Generative model calls by engine and outcome.",
		}, []string{"engine", "status"}),
		ModelTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_model_duration_seconds",
			Help:    "Generative model call time in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120, 180},
		}),
	}
	m.reg.MustRegister(
		m.RequestCounter,
		m.ResponseTime,
		m.CacheLookups,
		m.FetchCounter,
		m.FetchTime,
		m.ModelCalls,
		m.ModelTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordCacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecordFetch(kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchCounter.WithLabelValues(kind, outcome(err)).Inc()
	m.FetchTime.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) RecordModelCall(engine string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.ModelCalls.WithLabelValues(engine, outcome(err)).Inc()
	m.ModelTime.Observe(d.Seconds())
}

// Middleware records count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.RequestCounter.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.ResponseTime.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
