package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wetech/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(t *testing.T, perMinute int, trusted []string) *gin.Engine {
	t.Helper()
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	r.Use(RateLimitMiddleware(perMinute, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newLimitedRouter(t, 2, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:40000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:40000"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per client")
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	r := newLimitedRouter(t, 2, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes, "rotating the header must not reset the bucket")
}

func TestRateLimitHonoursTrustedProxy(t *testing.T) {
	r := newLimitedRouter(t, 1, []string{"10.1.0.0/16"})

	call := func(forwarded string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.0.5:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("198.51.100.1"))
	assert.Equal(t, http.StatusOK, call("198.51.100.2"))
}

func TestRateLimiterStoreEvictsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(10)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	store.getLimiter("10.0.0.1")
	store.getLimiter("10.0.0.2")
	require.Equal(t, 2, store.size())

	now = now.Add(limiterIdleTTL / 2)
	store.getLimiter("10.0.0.2")
	assert.Equal(t, 2, store.size(), "no sweep before the TTL elapses")

	now = now.Add(limiterIdleTTL / 2)
	store.getLimiter("10.0.0.3")
	assert.Equal(t, 2, store.size(), "10.0.0.1 was idle for a full TTL")

	store.mu.Lock()
	_, gone := store.limiters["10.0.0.1"]
	_, kept := store.limiters["10.0.0.2"]
	store.mu.Unlock()
	assert.False(t, gone)
	assert.True(t, kept)
}

func TestJWTAuthAdminMiddleware(t *testing.T) {
	issuer, err := utils.NewTokenIssuer("test-secret")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", JWTAuthAdminMiddleware(issuer, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("adminUser"))
	})

	call := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer garbage").Code)

	userToken, err := issuer.GenerateToken("someone", "user", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call("Bearer "+userToken).Code)

	adminToken, err := issuer.GenerateToken("admin", AdminRole, time.Hour)
	require.NoError(t, err)
	w := call("Bearer " + adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
