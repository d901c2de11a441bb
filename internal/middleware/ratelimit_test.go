package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig(burst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // 補充をほぼ止めてバーストのみで検証
		GeneralBurst:    burst,
		AuthRate:        rate.Limit(0.001),
		AuthBurst:       burst,
		CleanupInterval: time.Hour,
	}
}

func okNext() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// バースト分を使い切ると429が返ることを検証
func TestGeneralMiddleware_ExceedsBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okNext())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/articles", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), 7))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), 7))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

// ユーザーごとに独立したリミッターが使われることを検証
func TestGeneralMiddleware_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okNext())

	// ユーザー7がバーストを使い切る
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), 7))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// ユーザー8には影響しない
	req = httptest.NewRequest(http.MethodGet, "/articles", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), 8))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status for user 8 = %d, want 200", rec.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", rl.GeneralLimiterCount())
	}
}

// 未認証コンテキストでGeneralMiddlewareが401を返すことを検証
func TestGeneralMiddleware_NoSession(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okNext())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// AuthMiddlewareが接続元IPをキーにすることを検証
func TestAuthMiddleware_PerIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1))
	defer rl.Stop()

	handler := rl.AuthMiddleware()(okNext())

	// 同一IPの2回目は429
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status for same IP = %d, want 429", rec.Code)
	}

	// 別IPは通る
	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.2:12345"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status for other IP = %d, want 200", rec.Code)
	}
}

// NewRateLimiterConfigが毎分レートを正しく換算することを検証
func TestNewRateLimiterConfig(t *testing.T) {
	config := NewRateLimiterConfig(120, 10)
	if config.GeneralRate != rate.Limit(2.0) {
		t.Errorf("GeneralRate = %v, want 2.0", config.GeneralRate)
	}
	if config.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", config.GeneralBurst)
	}
	if config.AuthBurst != 10 {
		t.Errorf("AuthBurst = %d, want 10", config.AuthBurst)
	}
}
