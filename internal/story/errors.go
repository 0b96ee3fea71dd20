package story

import (
	"errors"
	"fmt"

	"github.com/hitoshi/storybrowser/internal/model"
)

var (
	// ErrInvalidArgument は呼び出し側の入力が契約に違反している場合のエラー。
	// 入出力を行う前に返される。
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownCategory は未知のカテゴリが指定された場合のエラー。
	// ErrInvalidArgumentとしても判定できる。
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrInvalidArgument)
)

// FetchError は記事1件の取得に失敗したことを表す。
// ページ組み立て時は記録されたうえで結果から除外される。
type FetchError struct {
	ItemID int64
	Err    error
}

// Error はerrorインターフェースを実装する。
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch item %d: %v", e.ItemID, e.Err)
}

// Unwrap は原因のエラーを返す。
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ListingFetchError はカテゴリの記事ID一覧の取得に失敗したことを表す。
// ページ全体が提供できないため呼び出し元まで伝播する。
type ListingFetchError struct {
	Category model.Category
	Err      error
}

// Error はerrorインターフェースを実装する。
func (e *ListingFetchError) Error() string {
	return fmt.Sprintf("fetch %s listing: %v", e.Category, e.Err)
}

// Unwrap は原因のエラーを返す。
func (e *ListingFetchError) Unwrap() error {
	return e.Err
}

// validateWindow はカテゴリとページ範囲を検証する。
func validateWindow(category model.Category, page, pageSize int) error {
	if _, ok := model.ParseCategory(string(category)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if page < 1 {
		return invalidArgumentf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 {
		return invalidArgumentf("page size must be >= 1, got %d", pageSize)
	}
	return nil
}

// invalidArgumentf は詳細付きのErrInvalidArgumentを返す。
func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
