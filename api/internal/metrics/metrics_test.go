package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	m := New()
	m.RecordCacheLookup("image", "hit")
	m.RecordCacheLookup("image", "hit")
	m.RecordFetch("document", errors.New("boom"), time.Millisecond)
	m.RecordModelCall("gemini", nil, time.Second)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("image", "hit")); got != 2 {
		t.Fatalf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FetchCounter.WithLabelValues("document", "error")); got != 1 {
		t.Fatalf("fetch errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ModelCalls.WithLabelValues("gemini", "success")); got != 1 {
		t.Fatalf("model calls = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordCacheLookup("image", "miss")
	m.RecordFetch("image", nil, 0)
	m.RecordModelCall("gemini", nil, 0)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/healthz", "200")); got != 1 {
		t.Fatalf("request count = %v, want 1", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "relay_http_requests_total") {
		t.Fatalf("exposition missing request counter:\n%s", w.Body.String())
	}
}
