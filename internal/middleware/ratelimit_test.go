package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter()
	limiter.clock = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow(ctx, "ip", 2, time.Minute); !ok {
			t.Fatalf("request %d should pass", i)
		}
	}
	now = now.Add(20 * time.Second)
	ok, retry := limiter.Allow(ctx, "ip", 2, time.Minute)
	if ok {
		t.Fatal("third request in window should be rejected")
	}
	if retry != 40*time.Second {
		t.Errorf("retry after = %v, want 40s", retry)
	}
	if ok, _ := limiter.Allow(ctx, "other", 2, time.Minute); !ok {
		t.Fatal("keys must not share windows")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow(ctx, "ip", 2, time.Minute); !ok {
		t.Fatal("new window should reset the count")
	}
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter()
	limiter.clock = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		limiter.Allow(ctx, ip, 5, time.Minute)
	}
	if limiter.Len() != 3 {
		t.Fatalf("tracked = %d, want 3", limiter.Len())
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow(ctx, "10.0.0.4", 5, time.Minute)
	if limiter.Len() != 1 {
		t.Errorf("expired clients should be dropped, tracked = %d", limiter.Len())
	}
}

func TestRedisLimiterWithoutClientAllows(t *testing.T) {
	var l *RedisLimiter
	if ok, _ := l.Allow(context.Background(), "ip", 1, time.Minute); !ok {
		t.Error("nil limiter should let requests through")
	}
	if ok, _ := NewRedisLimiter(nil).Allow(context.Background(), "ip", 1, time.Minute); !ok {
		t.Error("limiter without a client should let requests through")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", RateLimit(NewRateLimiter(), 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	var last *httptest.ResponseRecorder
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}
}
