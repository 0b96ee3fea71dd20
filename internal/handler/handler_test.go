package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storybrowser/internal/cache"
	"github.com/hitoshi/storybrowser/internal/model"
)

// --- モック定義 ---

// mockStoryService はStoryServiceInterface、ItemServiceInterface、CacheServiceInterfaceのモック実装。
type mockStoryService struct {
	getPageFn    func(ctx context.Context, category model.Category, page, pageSize int) ([]*model.Item, error)
	getItemFn    func(ctx context.Context, id int64) (*model.Item, error)
	clearCalls   int
	cacheStatsFn func() []cache.Stats
}

func (m *mockStoryService) GetPage(ctx context.Context, category model.Category, page, pageSize int) ([]*model.Item, error) {
	if m.getPageFn != nil {
		return m.getPageFn(ctx, category, page, pageSize)
	}
	return []*model.Item{}, nil
}

func (m *mockStoryService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, id)
	}
	return &model.Item{ID: id}, nil
}

func (m *mockStoryService) ClearCache() {
	m.clearCalls++
}

func (m *mockStoryService) CacheStats() []cache.Stats {
	if m.cacheStatsFn != nil {
		return m.cacheStatsFn()
	}
	return nil
}

// --- ヘルパー ---

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// withChiURLParam はchiのURLパラメータをリクエストに設定するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// testItems はIDの連番から記事を生成する。
func testItems(ids ...int64) []*model.Item {
	items := make([]*model.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, &model.Item{
			ID:           id,
			Title:        "Story " + string(rune('A'+id%26)),
			Author:       "pg",
			Score:        int(id),
			CreatedAt:    testNow.Add(-2 * time.Hour).Unix(),
			CommentCount: 3,
			Kind:         model.ItemKindStory,
			TargetURL:    "https://www.example.com/posts/1",
		})
	}
	return items
}
