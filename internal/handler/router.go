package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contentguard/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sql.DBのPingContextを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver      middleware.UserResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.HTTPStatusRecorder

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 案件・ターゲット
	CaseService   CaseServiceInterface
	TargetService TargetServiceInterface

	// 公開統計
	StatsService StatsServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → [Session → RateLimit(General)]
//
// セッション作成・ログアウト・公開統計・ヘルスチェックは認証グループの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	caseHandler := NewCaseHandler(deps.CaseService)
	targetHandler := NewTargetHandler(deps.TargetService)
	statsHandler := NewStatsHandler(deps.StatsService)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", rootHandler)

		r.Post("/auth/session", authHandler.CreateSession)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/stats/public", statsHandler.GetPublicStats)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.UserResolver))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/auth/me", authHandler.Me)

			// 案件管理
			r.Route("/cases", func(r chi.Router) {
				r.Get("/", caseHandler.ListCases)
				// POST /api/cases - 案件作成（作成専用レート制限を追加）
				r.With(deps.RateLimiter.CaseCreationMiddleware()).Post("/", caseHandler.CreateCase)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", caseHandler.GetCase)
					r.Patch("/", caseHandler.UpdateCase)

					// 案件配下のターゲット（所有権は親案件経由で推移的に検証される）
					r.Get("/targets", targetHandler.ListTargets)
					r.Post("/targets", targetHandler.AddTargets)
				})
			})
		})
	})

	return r
}

// rootHandler はAPIの疎通確認用レスポンスを返す。
// GET /api/
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "ContentGuard API",
	})
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
