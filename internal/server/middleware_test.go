package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-marketplace/internal/conf"
	"go-marketplace/pkg/metrics"
	"go-marketplace/pkg/problemdetails"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
})

func TestRateLimiter_WithinLimit(t *testing.T) {
	// Arrange
	rl, stop := NewRateLimiter(&conf.RateLimit{RequestsPerMinute: 100})
	defer stop()
	handler := rl.Middleware(okHandler)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/listings/search", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
		assert.Equal(t, "100", rr.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiter_ExceedsLimit(t *testing.T) {
	// Arrange
	rl, stop := NewRateLimiter(&conf.RateLimit{RequestsPerMinute: 2})
	defer stop()
	handler := rl.Middleware(okHandler)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/listings/search", nil)
		// same client, different ports
		req.RemoteAddr = "192.168.1.1:1234" + string(rune('0'+i))
		last = httptest.NewRecorder()

		// Act
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	// Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "application/problem+json", last.Header().Get("Content-Type"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("X-RateLimit-Reset"))

	var problem problemdetails.ProblemDetail
	require.NoError(t, json.NewDecoder(last.Body).Decode(&problem))
	assert.Equal(t, http.StatusTooManyRequests, problem.Status)
	assert.Contains(t, problem.Type, problemdetails.TypeRateLimitExceeded)
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	// Arrange
	rl, stop := NewRateLimiter(&conf.RateLimit{RequestsPerMinute: 1})
	defer stop()
	handler := rl.Middleware(okHandler)

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code, addr)
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	// Arrange
	rl, stop := NewRateLimiter(nil)
	defer stop()
	rl.getLimiter("10.0.0.1")

	// Act
	rl.evictIdle(0)

	// Assert
	assert.Empty(t, rl.limiters)
	assert.Equal(t, defaultRequestsPerMinute, rl.burst)
}

func TestLoggerMiddleware(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.InfoLevel)
	handler := LoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/listings/abc", nil)
	req.Header.Set("X-Seller-ID", "seller-1")

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Assert
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "DELETE", fields["method"])
	assert.Equal(t, "/listings/abc", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "seller-1", fields["seller_id"])
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	// Arrange
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/listings/{id}", okHandler)

	// Act
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/listings/one", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/listings/two", nil))

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/listings/{id}", "200")))
}
