package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-profile-service/internal/metrics"
	"user-profile-service/pkg/logger"
	"user-profile-service/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zaptest.NewLogger(t)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/ping", nil)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(logger.RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http request", entry.Message)
	assert.Equal(t, "/ping", entry.ContextMap()["route"])
	assert.Equal(t, seen, entry.ContextMap()["request_id"])
}

func TestLogger_ReusesIncomingRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := perform(r, http.MethodGet, "/missing", http.Header{"X-Request-Id": {"req-123"}})

	assert.Equal(t, "req-123", w.Header().Get(logger.RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	r := gin.New()
	r.Use(Metrics(collector))
	r.GET("/v1/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/v1/users/1", nil)
	perform(r, http.MethodGet, "/v1/users/2", nil)

	expected := `
# HELP userprofile_requests_total Handled requests by transport, operation and result code.
# TYPE userprofile_requests_total counter
userprofile_requests_total{code="200",operation="/v1/users/:id",transport="http"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "userprofile_requests_total"))
}

func newLimiter(t *testing.T, burst int) (*ratelimit.Limiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.New(client, ratelimit.Config{
		RequestsPerSecond: 0.001,
		BurstCapacity:     burst,
		Enabled:           true,
	}), mr
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	limiter, _ := newLimiter(t, 2)
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	r := gin.New()
	r.Use(RateLimiter(limiter, collector, zaptest.NewLogger(t)))
	r.GET("/v1/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/v1/users", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/v1/users", nil).Code)

	w := perform(r, http.MethodGet, "/v1/users", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "userprofile_rate_limited_total"))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newLimiter(t, 1)
	mr.Close()

	r := gin.New()
	r.Use(RateLimiter(limiter, nil, zaptest.NewLogger(t)))
	r.GET("/v1/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/v1/users", nil).Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(nil, nil, zaptest.NewLogger(t)))
	r.GET("/v1/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/v1/users", nil).Code)
}
