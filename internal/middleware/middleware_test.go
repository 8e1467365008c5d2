package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/indoor-nav/internal/logging"
)

func newEngine(t *testing.T, out *bytes.Buffer) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()

	r := gin.New()
	r.Use(NewRequestLogger(logging.NewWriterLogger("http", out, logging.DEBUG)).Handler())
	r.Use(NewPrometheusMiddleware("test", reg).Handler())
	RegisterMetricsEndpoint(r, reg)

	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, TraceID(c)) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r, reg
}

func TestRequestLoggerSetsTraceHeader(t *testing.T) {
	var out bytes.Buffer
	r, _ := newEngine(t, &out)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Equal(t, http.StatusOK, w.Code)
	traceID := w.Header().Get(TraceHeader)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, w.Body.String())
	assert.Contains(t, out.String(), "GET /ok 200")
}

func TestServerErrorsLoggedAsWarn(t *testing.T) {
	var out bytes.Buffer
	r, _ := newEngine(t, &out)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, out.String(), "[WARN] [http]")
}

func TestPrometheusMiddlewareCountsErrors(t *testing.T) {
	var out bytes.Buffer
	r, reg := newEngine(t, &out)

	for _, path := range []string{"/ok", "/boom", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	errorsByPath := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "test_http_request_errors_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "path" {
					errorsByPath[lp.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"/boom": 1, "unmatched": 1}, errorsByPath)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_request_duration_seconds"))
}
