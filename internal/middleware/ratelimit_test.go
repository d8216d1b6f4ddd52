package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/sitetrack/internal/model"
)

func testRateLimiterConfig(generalBurst, loginBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    generalBurst,
		LoginRate:       rate.Limit(1.0 / 60.0),
		LoginBurst:      loginBurst,
		CleanupInterval: time.Hour,
	}
}

func requestAs(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/sites/me", nil)
	return req.WithContext(ContextWithActor(req.Context(), model.Actor{ID: userID}))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(5, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestAs("user-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

// TestRateLimitMiddleware_Returns429WithRetryAfter は上限超過で429とRetry-Afterが返ることを検証する。
func TestRateLimitMiddleware_Returns429WithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestAs("user-rate-limit"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-rate-limit"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		t.Errorf("Retry-After = %q, want positive integer", w.Header().Get("Retry-After"))
	}
	if retryAfter != 60 {
		t.Errorf("Retry-After = %d, want 60", retryAfter)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != http.StatusTooManyRequests || body.Errors[0].Code != model.ErrCodeRateLimited {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimitMiddleware_IsolatesUserRateLimits(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-A"))
	if w.Code != http.StatusOK {
		t.Fatalf("user-A first: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-A"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("user-A second: status = %d, want 429", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-B"))
	if w.Code != http.StatusOK {
		t.Errorf("user-B: status = %d, want 200", w.Code)
	}
	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

func TestRateLimitMiddleware_NoActor_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sites/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestLoginRateLimit_KeyedByClientIP はログインの制限がクライアントIP単位であることを検証する。
func TestLoginRateLimit_KeyedByClientIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(10, 1))
	defer rl.Stop()
	handler := rl.LoginMiddleware()(okHandler())

	login := func(remoteAddr, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
		req.RemoteAddr = remoteAddr
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if got := login("10.0.0.1:5000", ""); got != http.StatusOK {
		t.Fatalf("first login: status = %d", got)
	}
	if got := login("10.0.0.1:5001", ""); got != http.StatusTooManyRequests {
		t.Errorf("second login from same IP: status = %d, want 429", got)
	}
	if got := login("10.0.0.2:5000", ""); got != http.StatusOK {
		t.Errorf("login from other IP: status = %d, want 200", got)
	}
	if got := login("10.0.0.1:5000", "203.0.113.7, 10.0.0.1"); got != http.StatusOK {
		t.Errorf("login via proxy: status = %d, want 200", got)
	}
	if got := rl.LoginLimiterCount(); got != 3 {
		t.Errorf("LoginLimiterCount() = %d, want 3", got)
	}
}

// TestLoginRateLimit_IndependentFromGeneralLimit はログインと全般の制限が独立していることを検証する。
func TestLoginRateLimit_IndependentFromGeneralLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	general.ServeHTTP(httptest.NewRecorder(), requestAs("user-indep"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
	w := httptest.NewRecorder()
	rl.LoginMiddleware()(okHandler()).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("login: status = %d, want 200", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"RemoteAddr", "192.0.2.1:1234", "", "192.0.2.1"},
		{"X-Forwarded-For先頭", "192.0.2.1:1234", "198.51.100.9, 192.0.2.1", "198.51.100.9"},
		{"ポートなし", "192.0.2.5", "", "192.0.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	cfg := testRateLimiterConfig(10, 10)
	cfg.CleanupInterval = 10 * time.Millisecond
	rl := NewRateLimiter(cfg)
	rl.Stop()

	rl.GeneralMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), requestAs("user-cleanup"))
	rl.LoginMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth", nil))

	if rl.GeneralLimiterCount() != 1 || rl.LoginLimiterCount() != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", rl.GeneralLimiterCount(), rl.LoginLimiterCount())
	}

	time.Sleep(30 * time.Millisecond)
	rl.cleanup()

	if rl.GeneralLimiterCount() != 0 || rl.LoginLimiterCount() != 0 {
		t.Errorf("counts after cleanup = %d/%d, want 0/0", rl.GeneralLimiterCount(), rl.LoginLimiterCount())
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.LoginBurst != 10 {
		t.Errorf("LoginBurst = %d, want 10", cfg.LoginBurst)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestRateLimiterConfigPerMinute(t *testing.T) {
	cfg := RateLimiterConfigPerMinute(60, 0)
	if cfg.GeneralRate != rate.Limit(1) || cfg.GeneralBurst != 60 {
		t.Errorf("general = %v/%d, want 1/60", cfg.GeneralRate, cfg.GeneralBurst)
	}
	if cfg.LoginBurst != DefaultRateLimiterConfig().LoginBurst {
		t.Errorf("LoginBurst = %d, want default", cfg.LoginBurst)
	}
}
