package handler

import (
	"time"

	"github.com/hitoshi/storybrowser/internal/model"
)

// ItemResponse は記事1件のレスポンス。
type ItemResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Score         int    `json:"score"`
	CreatedAt     int64  `json:"created_at"`
	CommentCount  int    `json:"comment_count"`
	Kind          string `json:"kind"`
	URL           string `json:"url,omitempty"`
	Text          string `json:"text,omitempty"` // サニタイズ済みHTML
	Host          string `json:"host,omitempty"`
	TimeAgo       string `json:"time_ago"`
	DiscussionURL string `json:"discussion_url"`
}

// StoryPageResponse はカテゴリのページのレスポンス。
type StoryPageResponse struct {
	Category string         `json:"category"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
	Items    []ItemResponse `json:"items"`
}

// categoryResponse はカテゴリ一覧の要素。
type categoryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// NewItemResponse は記事をレスポンス形式に変換する。nowは相対時刻の基準。
func NewItemResponse(item *model.Item, now time.Time) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Title:         item.Title,
		Author:        item.Author,
		Score:         item.Score,
		CreatedAt:     item.CreatedAt,
		CommentCount:  item.CommentCount,
		Kind:          string(item.Kind),
		URL:           item.TargetURL,
		Text:          item.Text,
		Host:          model.HostName(item.TargetURL),
		TimeAgo:       model.TimeAgo(item.CreatedAt, now),
		DiscussionURL: item.DiscussionURL(),
	}
}

// NewStoryPageResponse はページのレスポンスを組み立てる。
// 次ページの有無は件数がページサイズに達しているかで判定する。
func NewStoryPageResponse(category model.Category, page, pageSize int, items []*model.Item, now time.Time) StoryPageResponse {
	resp := StoryPageResponse{
		Category: string(category),
		Page:     page,
		PageSize: pageSize,
		HasMore:  len(items) >= pageSize,
		Items:    make([]ItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, NewItemResponse(item, now))
	}
	return resp
}
