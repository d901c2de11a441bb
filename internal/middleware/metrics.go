package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pandamarket/internal/metrics"
)

// NewMetricsMiddleware はリクエストの完了数と処理時間をメトリクスに記録する
// ミドルウェアを返す。パスラベルにはchiのルートパターンを使い、
// パスパラメータによるラベルの爆発を防ぐ。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			collector.RecordHTTPRequest(r.Method, path, rec.statusCode)
			collector.RecordHTTPDuration(r.Method, path, time.Since(start))
		})
	}
}
