package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/storybrowser/internal/model"
)

// ErrorResponseBody はJSONとRSSの両エンドポイントで共通のエラー本文。
// 失敗時はRSSのエンドポイントでもこの形式のJSONを返す。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse はAPIErrorをJSONで書き込む。
// エラー応答は一時的なものとして扱い、中継キャッシュに保存させない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	body := ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
	json.NewEncoder(w).Encode(body)
}

// WriteInternalServerError は500を書き込む。原因はログにのみ残し、本文には含めない。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
