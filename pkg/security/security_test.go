package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func router(middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middlewares...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, remoteAddr, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSPolicy(t *testing.T) {
	policy := NewCORSPolicy([]string{"http://allowed.test"})
	r := router(policy.Middleware())

	w := get(r, "10.0.0.1:1234", "http://allowed.test")
	assert.Equal(t, "http://allowed.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "10.0.0.1:1234", "http://evil.test")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	policy.SetOrigins([]string{"*"})
	assert.True(t, policy.Allowed("http://evil.test"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSecureHeaders(t *testing.T) {
	w := get(router(Secure()), "10.0.0.1:1234", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Hour)
	defer limiter.Stop()
	r := router(limiter.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1234", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.1:1234", "").Code)

	// buckets are per client address
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2:1234", "").Code)

	limiter.Update(1, time.Hour)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.3:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.3:1234", "").Code)
}
