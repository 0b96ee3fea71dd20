package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/storybrowser/internal/model"
)

func TestRender_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	page := Page{
		Category: model.CategoryAsk,
		Page:     2,
		PageSize: 30,
		Items: []*model.Item{
			{
				ID:           101,
				Title:        "Ask HN: What are you working on?",
				Author:       "alice",
				Score:        42,
				CreatedAt:    now.Add(-2 * time.Hour).Unix(),
				CommentCount: 17,
				Kind:         model.ItemKindStory,
				Text:         "<p>Share your <i>side</i> projects &amp; ideas</p>",
			},
			{
				ID:        102,
				Title:     "Rust & Go",
				Author:    "bob",
				CreatedAt: now.Add(-3 * 24 * time.Hour).Unix(),
				Kind:      model.ItemKindStory,
				TargetURL: "https://www.example.com/post",
			},
		},
	}

	out, err := Render(page, now)
	if err != nil {
		t.Fatalf("Render がエラーを返した: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(out)
	if err != nil {
		t.Fatalf("生成したRSSのパースに失敗した: %v", err)
	}

	if parsed.FeedType != "rss" {
		t.Errorf("FeedType = %q, want rss", parsed.FeedType)
	}
	if parsed.Title != "Hacker News: Ask HN (page 2)" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != "Ask HN: What are you working on?" {
		t.Errorf("Items[0].Title = %q", first.Title)
	}
	if first.Link != "https://news.ycombinator.com/item?id=101" {
		t.Errorf("テキスト投稿のリンクは議論ページになるべき: %q", first.Link)
	}
	if !strings.Contains(first.Description, "42 points by alice 2 hours ago | 17 comments") {
		t.Errorf("Items[0].Description = %q", first.Description)
	}
	if !strings.Contains(first.Description, "Share your side projects &amp; ideas") {
		t.Errorf("本文の抜粋を含むべき: %q", first.Description)
	}

	second := parsed.Items[1]
	if second.Title != "Rust & Go" {
		t.Errorf("Items[1].Title = %q", second.Title)
	}
	if second.Link != "https://www.example.com/post" {
		t.Errorf("Items[1].Link = %q", second.Link)
	}
	if !strings.Contains(second.Description, "example.com") {
		t.Errorf("リンク先のホスト名を含むべき: %q", second.Description)
	}
	if second.PublishedParsed == nil || !second.PublishedParsed.Equal(now.Add(-3*24*time.Hour)) {
		t.Errorf("PublishedParsed = %v", second.PublishedParsed)
	}
}

func TestRender_EmptyPage(t *testing.T) {
	out, err := Render(Page{Category: model.CategoryJob, Page: 1, PageSize: 30}, time.Now())
	if err != nil {
		t.Fatalf("Render がエラーを返した: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(out)
	if err != nil {
		t.Fatalf("生成したRSSのパースに失敗した: %v", err)
	}
	if parsed.Title != "Hacker News: Jobs" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(parsed.Items))
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"空文字列", "", 10, ""},
		{"タグを除去", "<p>hello <i>world</i></p>", 0, "hello world"},
		{"段落を空白でつなぐ", "<p>one</p><p>two</p>", 0, "one two"},
		{"改行タグ", "a<br>b", 0, "a b"},
		{"エンティティを展開", "x &gt; y &amp; z", 0, "x > y & z"},
		{"連続する空白をまとめる", "  a \n\n b  ", 0, "a b"},
		{"切り詰め", "<p>abcdefghij</p>", 4, "abcd…"},
		{"マルチバイト", "日本語のテキスト", 3, "日本語…"},
		{"上限ちょうど", "abcd", 4, "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("PlainText(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}
