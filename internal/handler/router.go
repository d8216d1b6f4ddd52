package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/hitoshi/sitetrack/docs"
	"github.com/hitoshi/sitetrack/internal/metrics"
	"github.com/hitoshi/sitetrack/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	Logger            *slog.Logger
	Metrics           middleware.HTTPMetrics
	Gatherer          prometheus.Gatherer
	Health            HealthChecker

	// サービス
	AuthService AuthServiceInterface
	UserService UserServiceInterface
	SiteService SiteServiceInterface

	// Development はtrueの場合のみ全ユーザー削除を有効にする。
	Development bool
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Logging → Metrics
//	  → (認証ルート) Auth → RateLimit(General) [→ Admin]
//	  → (ログイン・登録) RateLimit(Login)
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService, deps.Development)
	siteHandler := NewSiteHandler(deps.SiteService)

	requireAuth := middleware.NewAuthMiddleware(deps.Authenticator)
	requireAdmin := middleware.NewAdminMiddleware()

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
	))

	r.With(deps.RateLimiter.LoginMiddleware()).Post("/api/auth", authHandler.Login)

	r.Route("/api/users", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/", userHandler.Register)
		r.Delete("/delete", userHandler.PurgeAll)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.Update)
			r.With(requireAdmin).Get("/", userHandler.List)
		})
	})

	r.Route("/api/sites", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/", siteHandler.RecordVisit)
		r.Patch("/", siteHandler.CloseVisit)
		r.Get("/me", siteHandler.ListMine)
		r.With(requireAdmin).Get("/", siteHandler.ListAll)
		r.With(requireAdmin).Get("/{id}", siteHandler.ListForUser)
	})

	return r
}
