package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/storybrowser/internal/metrics"
	"github.com/hitoshi/storybrowser/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 記事
	StoryService StoryServiceInterface
	ItemService  ItemServiceInterface
	Pages        PageConfig

	// キャッシュ管理
	CacheService CacheServiceInterface

	// メトリクス。nilの場合は/metricsを公開しない
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → SecurityHeaders → CORS → RateLimit(/api/*のみ)
//
// /healthと/metricsはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	storyHandler := NewStoryHandler(deps.StoryService, deps.Pages, logger)
	itemHandler := NewItemHandler(deps.ItemService, logger)
	cacheHandler := NewCacheHandler(deps.CacheService, logger)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/categories", storyHandler.ListCategories)

		r.Route("/stories/{category}", func(r chi.Router) {
			r.Get("/", storyHandler.GetStories)
			r.Get("/rss", storyHandler.GetStoriesRSS)
		})

		r.Get("/items/{id}", itemHandler.GetItem)

		r.Route("/cache", func(r chi.Router) {
			r.Delete("/", cacheHandler.ClearCache)
			r.Get("/stats", cacheHandler.GetStats)
		})
	})

	return r
}

// healthHandler はプロセスの稼働確認に応答する。
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
