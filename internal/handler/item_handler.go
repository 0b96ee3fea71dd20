package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storybrowser/internal/model"
)

// ItemServiceInterface は記事詳細ハンドラーが必要とするサービスインターフェース。
type ItemServiceInterface interface {
	// GetItem は記事を1件返す。
	GetItem(ctx context.Context, id int64) (*model.Item, error)
}

// ItemHandler は記事詳細のHTTPハンドラー。
type ItemHandler struct {
	service ItemServiceInterface
	logger  *slog.Logger
	now     func() time.Time
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(service ItemServiceInterface, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// GetItem は記事詳細を取得する。
// GET /api/items/:id
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidArgumentError("記事IDは0以上の整数で指定してください: "+raw))
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, NewItemResponse(item, h.now()))
}
