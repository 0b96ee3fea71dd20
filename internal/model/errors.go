package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, upstream, system
	Action   string // 利用者向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidArgument    = "INVALID_ARGUMENT"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeItemNotFound       = "ITEM_NOT_FOUND"
	ErrCodeFetchFailed        = "FETCH_FAILED"
	ErrCodeListingFetchFailed = "LISTING_FETCH_FAILED"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidArgumentError は入力値不正エラーを生成する。
func NewInvalidArgumentError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidArgument,
		Message:  fmt.Sprintf("不正なパラメータです: %s", reason),
		Category: "validation",
		Action:   "page と page_size には1以上の整数を指定してください。",
	}
}

// NewCategoryNotFoundError は未知のカテゴリ指定エラーを生成する。
func NewCategoryNotFoundError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリは存在しません: %s", category),
		Category: "validation",
		Action:   "top、new、best、ask、show、job のいずれかを指定してください。",
	}
}

// NewItemNotFoundError は記事未検出エラーを生成する。
func NewItemNotFoundError(itemID int64) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %d", itemID),
		Category: "upstream",
		Action:   "記事IDを確認してください。削除済みの記事は取得できません。",
	}
}

// NewFetchFailedError は記事取得失敗エラーを生成する。
func NewFetchFailedError(itemID int64) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("記事の取得に失敗しました: %d", itemID),
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewListingFetchFailedError は一覧取得失敗エラーを生成する。
func NewListingFetchFailedError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeListingFetchFailed,
		Message:  fmt.Sprintf("記事一覧の取得に失敗しました: %s", category),
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitedError はリクエスト頻度超過エラーを生成する。
func NewRateLimitedError(retryAfterSec int) *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   fmt.Sprintf("%d秒ほど待ってから再度お試しください。", retryAfterSec),
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、利用者には一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
