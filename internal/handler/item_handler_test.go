package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/storybrowser/internal/hackernews"
	"github.com/hitoshi/storybrowser/internal/model"
	"github.com/hitoshi/storybrowser/internal/story"
)

func newTestItemHandler(svc ItemServiceInterface, buf *bytes.Buffer) *ItemHandler {
	h := NewItemHandler(svc, newTestLogger(buf))
	h.now = func() time.Time { return testNow }
	return h
}

func TestItemHandler_GetItem_Success(t *testing.T) {
	svc := &mockStoryService{
		getItemFn: func(ctx context.Context, id int64) (*model.Item, error) {
			if id != 8863 {
				t.Errorf("id = %d, want 8863", id)
			}
			return &model.Item{
				ID:        8863,
				Title:     "Ask HN: テスト",
				Author:    "dhouston",
				Score:     104,
				CreatedAt: testNow.Add(-3 * 24 * time.Hour).Unix(),
				Kind:      model.ItemKindStory,
				Text:      "<p>本文</p>",
			}, nil
		},
	}
	var buf bytes.Buffer
	h := newTestItemHandler(svc, &buf)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/items/8863", nil), "id", "8863")
	w := httptest.NewRecorder()
	h.GetItem(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result ItemResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ID != 8863 || result.Author != "dhouston" || result.Score != 104 {
		t.Errorf("result = %+v", result)
	}
	if result.URL != "" || result.Host != "" {
		t.Errorf("テキスト投稿はurlとhostを持たないべき: %+v", result)
	}
	if result.TimeAgo != "3 days ago" {
		t.Errorf("time_ago = %q, want %q", result.TimeAgo, "3 days ago")
	}
	if result.Text != "<p>本文</p>" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestItemHandler_GetItem_InvalidID(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "1.5"} {
		called := false
		svc := &mockStoryService{
			getItemFn: func(ctx context.Context, id int64) (*model.Item, error) {
				called = true
				return nil, nil
			},
		}
		var buf bytes.Buffer
		h := newTestItemHandler(svc, &buf)

		req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/items/x", nil), "id", raw)
		w := httptest.NewRecorder()
		h.GetItem(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", raw, w.Code)
		}
		if called {
			t.Errorf("id %q: 不正なIDではサービスを呼び出さないべき", raw)
		}
	}
}

func TestItemHandler_GetItem_FetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
		wantCode   string
	}{
		{"not found", hackernews.ErrItemNotFound, http.StatusNotFound, model.ErrCodeItemNotFound},
		{"deleted", hackernews.ErrItemUnavailable, http.StatusNotFound, model.ErrCodeItemNotFound},
		{"upstream status", &hackernews.StatusError{StatusCode: 503, URL: "http://upstream/item/1.json"}, http.StatusBadGateway, model.ErrCodeFetchFailed},
		{"transport", errors.New("connection reset"), http.StatusBadGateway, model.ErrCodeFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockStoryService{
				getItemFn: func(ctx context.Context, id int64) (*model.Item, error) {
					return nil, &story.FetchError{ItemID: id, Err: tt.cause}
				},
			}
			var buf bytes.Buffer
			h := newTestItemHandler(svc, &buf)

			req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/items/1", nil), "id", "1")
			w := httptest.NewRecorder()
			h.GetItem(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := parseAPIErrorResponse(t, w); body["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
		})
	}
}
