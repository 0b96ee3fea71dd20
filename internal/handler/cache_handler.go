package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/storybrowser/internal/cache"
	"github.com/hitoshi/storybrowser/internal/middleware"
)

// CacheServiceInterface はキャッシュ管理ハンドラーが必要とするサービスインターフェース。
type CacheServiceInterface interface {
	// ClearCache はすべてのキャッシュを破棄する。
	ClearCache()
	// CacheStats はキャッシュごとの統計情報を返す。
	CacheStats() []cache.Stats
}

// CacheHandler はキャッシュ管理のHTTPハンドラー。
type CacheHandler struct {
	service CacheServiceInterface
	logger  *slog.Logger
}

// NewCacheHandler はCacheHandlerを生成する。
func NewCacheHandler(service CacheServiceInterface, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{service: service, logger: logger}
}

// GetStats はキャッシュの統計情報を返す。
// GET /api/cache/stats
func (h *CacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"caches": h.service.CacheStats()})
}

// ClearCache はすべてのキャッシュを破棄する。
// DELETE /api/cache
func (h *CacheHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache()
	h.logger.Info("cache cleared via api",
		slog.String("client_ip", middleware.ClientIP(r)),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}
