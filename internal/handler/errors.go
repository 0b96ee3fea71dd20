package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storybrowser/internal/hackernews"
	"github.com/hitoshi/storybrowser/internal/middleware"
	"github.com/hitoshi/storybrowser/internal/model"
	"github.com/hitoshi/storybrowser/internal/story"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse はAPIErrorを統一フォーマットで書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		listingErr *story.ListingFetchError
		fetchErr   *story.FetchError
	)

	switch {
	case errors.Is(err, context.Canceled):
		// クライアントが切断済みのためレスポンスは書き込まない
		logger.Debug("request canceled",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
	case errors.Is(err, story.ErrUnknownCategory):
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewCategoryNotFoundError(chi.URLParam(r, "category")))
	case errors.Is(err, story.ErrInvalidArgument):
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidArgumentError(err.Error()))
	case errors.As(err, &listingErr):
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewListingFetchFailedError(string(listingErr.Category)))
	case errors.As(err, &fetchErr):
		if errors.Is(err, hackernews.ErrItemNotFound) || errors.Is(err, hackernews.ErrItemUnavailable) {
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewItemNotFoundError(fetchErr.ItemID))
			return
		}
		logger.Warn("item fetch failed",
			slog.Int64("item_id", fetchErr.ItemID),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewFetchFailedError(fetchErr.ItemID))
	default:
		// 想定外のエラーは内部サーバーエラーとして扱う
		logger.Error("internal server error",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
	}
}
