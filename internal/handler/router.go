package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tareas/internal/metrics"
	"github.com/hitoshi/tareas/internal/middleware"
	"github.com/hitoshi/tareas/internal/model"
)

// Pinger はストレージの死活確認インターフェース。
// *sql.DBがそのまま満たす。メモリストアの場合はnilでよい。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Authenticator     middleware.Authenticator

	// メトリクス（nil可）
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// サービス
	AuthService AuthServiceInterface
	TaskService TaskServiceInterface

	// ストレージ死活確認（nil可）
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → SecurityHeaders → CORS → Metrics → Logging → Recovery
//
// 認証が必要なルート（/tareas配下）には Auth → RateLimit(General) を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())

	// 未定義ルートと未対応メソッドにも統一エラーフォーマットを返す
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewRouteNotFoundError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, model.NewMethodNotAllowedError())
	})

	// typed-nilインターフェースを避けるため、nilチェックしてから渡す
	var regRecorder RegistrationRecorder
	if deps.Metrics != nil {
		regRecorder = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService, regRecorder)
	taskHandler := NewTaskHandler(deps.TaskService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.DB))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// ユーザー登録（未認証のためIP別レート制限を追加）
	r.With(deps.RateLimiter.RegistroMiddleware()).Post("/registro", authHandler.Registro)
	r.Post("/login", authHandler.Login)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/tareas", func(r chi.Router) {
			r.Post("/", taskHandler.Crear)
			r.Get("/", taskHandler.Listar)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Obtener)
				r.Put("/", taskHandler.Actualizar)
				r.Delete("/", taskHandler.Eliminar)
			})
		})
	})

	return r
}

// newHealthHandler はヘルスチェックのHTTPハンドラーを返す。
// ストレージ死活確認が設定されている場合はPingの結果を反映する。
func newHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
				return
			}
		}

		writeJSONResponse(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
