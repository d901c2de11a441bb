package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/pandamarket/internal/metrics"
	"github.com/hitoshi/pandamarket/internal/middleware"
)

// RouterDeps はルーター構築に必要な依存一式。
type RouterDeps struct {
	Auth     *AuthHandler
	Articles *ArticleHandler
	Products *ProductHandler
	Comments *CommentHandler

	TokenVerifier middleware.TokenVerifier
	UserFinder    middleware.UserFinder
	RateLimiter   *middleware.RateLimiter
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger

	AllowedOrigin string
	CSRF          middleware.CSRFConfig

	// HealthCheck はnil可。設定されていればヘルスチェックで呼ばれる。
	HealthCheck func(ctx context.Context) error
}

// NewRouter はAPI全体のルーターを構築する。
//
// ミドルウェアは外側から CORS → セキュリティヘッダー → リクエストID →
// ログ → リカバリー → メトリクス → CSRF の順に適用する。
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

	requireSession := middleware.RequireSession(deps.TokenVerifier, deps.UserFinder)
	optionalSession := middleware.OptionalSession(deps.TokenVerifier, deps.UserFinder)

	r.Get("/health", newHealthHandler(deps.HealthCheck))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))

	// 認証前エンドポイントにはIP単位のレート制限をかける
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthMiddleware())
		}
		r.Post("/auth/register", deps.Auth.Register)
		r.Post("/auth/login", deps.Auth.Login)
	})
	r.Post("/auth/refresh", deps.Auth.Refresh)
	r.Post("/auth/logout", deps.Auth.Logout)

	// 公開の参照系。ログイン済みならいいね状態を反映する
	r.Group(func(r chi.Router) {
		r.Use(optionalSession)
		r.Get("/articles", deps.Articles.List)
		r.Get("/articles/{id}", deps.Articles.Get)
		r.Get("/articles/{id}/comments", deps.Articles.ListComments)
		r.Get("/products", deps.Products.List)
		r.Get("/products/{id}", deps.Products.Get)
		r.Get("/products/{id}/comments", deps.Products.ListComments)
	})

	// 要ログインのエンドポイント。ユーザー単位のレート制限をかける
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/users/me", deps.Auth.Me)
		r.Patch("/users/me", deps.Auth.UpdateMe)
		r.Patch("/users/me/password", deps.Auth.UpdatePassword)
		r.Get("/users/me/products", deps.Auth.MyProducts)

		r.Post("/articles", deps.Articles.Create)
		r.Patch("/articles/{id}", deps.Articles.Update)
		r.Delete("/articles/{id}", deps.Articles.Delete)
		r.Post("/articles/{id}/comments", deps.Articles.CreateComment)
		r.Post("/articles/{id}/like", deps.Articles.ToggleLike)

		r.Get("/products/liked", deps.Products.ListLiked)
		r.Post("/products", deps.Products.Create)
		r.Patch("/products/{id}", deps.Products.Update)
		r.Delete("/products/{id}", deps.Products.Delete)
		r.Post("/products/{id}/comments", deps.Products.CreateComment)
		r.Post("/products/{id}/like", deps.Products.ToggleLike)

		r.Patch("/comments/{id}", deps.Comments.Update)
		r.Delete("/comments/{id}", deps.Comments.Delete)
	})

	return r
}

func newHealthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Error("ヘルスチェックに失敗しました", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
