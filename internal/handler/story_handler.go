package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storybrowser/internal/feed"
	"github.com/hitoshi/storybrowser/internal/model"
)

// StoryServiceInterface は記事一覧ハンドラーが必要とするサービスインターフェース。
type StoryServiceInterface interface {
	// GetPage はカテゴリのページを記事一覧の順序どおりに返す。
	GetPage(ctx context.Context, category model.Category, page, pageSize int) ([]*model.Item, error)
}

// PageConfig はページサイズの既定値と上限。
type PageConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// StoryHandler は記事一覧のHTTPハンドラー。
type StoryHandler struct {
	service StoryServiceInterface
	pages   PageConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewStoryHandler はStoryHandlerを生成する。
func NewStoryHandler(service StoryServiceInterface, pages PageConfig, logger *slog.Logger) *StoryHandler {
	if pages.DefaultPageSize <= 0 {
		pages.DefaultPageSize = 30
	}
	if pages.MaxPageSize < pages.DefaultPageSize {
		pages.MaxPageSize = pages.DefaultPageSize
	}
	return &StoryHandler{
		service: service,
		pages:   pages,
		logger:  logger,
		now:     time.Now,
	}
}

// ListCategories はサポートするカテゴリの一覧を返す。
// GET /api/categories
func (h *StoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := make([]categoryResponse, 0, len(model.Categories))
	for _, c := range model.Categories {
		categories = append(categories, categoryResponse{ID: string(c.ID), Label: c.Label})
	}
	writeJSON(w, map[string]any{"categories": categories})
}

// GetStories はカテゴリのページをJSONで返す。
// GET /api/stories/:category?page=1&page_size=30
func (h *StoryHandler) GetStories(w http.ResponseWriter, r *http.Request) {
	category, page, pageSize, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	items, err := h.service.GetPage(r.Context(), category, page, pageSize)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, NewStoryPageResponse(category, page, pageSize, items, h.now()))
}

// GetStoriesRSS はカテゴリのページをRSS 2.0で返す。
// GET /api/stories/:category/rss?page=1&page_size=30
func (h *StoryHandler) GetStoriesRSS(w http.ResponseWriter, r *http.Request) {
	category, page, pageSize, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	items, err := h.service.GetPage(r.Context(), category, page, pageSize)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	rss, err := feed.Render(feed.Page{
		Category: category,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}, h.now())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

// parseWindow はURLパラメータとクエリからカテゴリとページ範囲を取り出す。
// 不正な値の場合はエラーレスポンスを書き込みfalseを返す。
// page_sizeが上限を超える場合は上限に切り詰める。
func (h *StoryHandler) parseWindow(w http.ResponseWriter, r *http.Request) (model.Category, int, int, bool) {
	raw := chi.URLParam(r, "category")
	category, ok := model.ParseCategory(raw)
	if !ok {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewCategoryNotFoundError(raw))
		return "", 0, 0, false
	}

	page, err := positiveQueryInt(r, "page", 1)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidArgumentError(err.Error()))
		return "", 0, 0, false
	}

	pageSize, err := positiveQueryInt(r, "page_size", h.pages.DefaultPageSize)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidArgumentError(err.Error()))
		return "", 0, 0, false
	}
	pageSize = min(pageSize, h.pages.MaxPageSize)

	return category, page, pageSize, true
}

// positiveQueryInt はクエリパラメータを1以上の整数として読み取る。未指定の場合はdefを返す。
func positiveQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &queryParamError{name: name, value: raw}
	}
	return n, nil
}

// queryParamError は不正なクエリパラメータを表す。
type queryParamError struct {
	name  string
	value string
}

func (e *queryParamError) Error() string {
	return e.name + " must be a positive integer, got " + strconv.Quote(e.value)
}
