package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func runRateLimitedRequest(cfg RateLimitConfig) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimiter(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.1:52000"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithoutRedis(t *testing.T) {
	// No Redis client configured; the limiter must fail open.
	w := runRateLimitedRequest(RateLimitConfig{Limit: 1, Window: time.Minute})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without redis, got %d", w.Code)
	}
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	mock := setupRedisMock(t)
	mock.ExpectIncr("ratelimit:/login:10.0.0.1").SetVal(3)
	mock.ExpectExpire("ratelimit:/login:10.0.0.1", time.Minute).SetVal(true)

	w := runRateLimitedRequest(RateLimitConfig{Limit: 5, Window: time.Minute})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 within limit, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations not met: %v", err)
	}
}

func TestRateLimiter_Exceeded(t *testing.T) {
	mock := setupRedisMock(t)
	mock.ExpectIncr("ratelimit:/login:10.0.0.1").SetVal(6)
	mock.ExpectExpire("ratelimit:/login:10.0.0.1", time.Minute).SetVal(true)

	w := runRateLimitedRequest(RateLimitConfig{Limit: 5, Window: time.Minute})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when limit exceeded, got %d", w.Code)
	}
}

func TestRateLimiter_DefaultConfig(t *testing.T) {
	mock := setupRedisMock(t)
	mock.ExpectIncr("ratelimit:/login:10.0.0.1").SetVal(1)
	mock.ExpectExpire("ratelimit:/login:10.0.0.1", defaultRateWindow).SetVal(true)

	w := runRateLimitedRequest(RateLimitConfig{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for first request with defaults, got %d", w.Code)
	}
}

func TestResetRateLimit(t *testing.T) {
	mock := setupRedisMock(t)
	mock.ExpectDel("ratelimit:/login:10.0.0.1").SetVal(1)

	if err := ResetRateLimit("10.0.0.1", "/login"); err != nil {
		t.Fatalf("unexpected error resetting rate limit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations not met: %v", err)
	}
}

func TestResetRateLimit_NoRedis(t *testing.T) {
	if err := ResetRateLimit("10.0.0.1", "/login"); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}
