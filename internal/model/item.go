// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"time"
)

// discussionURLFormat はHacker News上の議論ページのURL書式。
const discussionURLFormat = "https://news.ycombinator.com/item?id=%d"

// ItemKind は記事の種別を表す。
type ItemKind string

const (
	// ItemKindStory は通常の投稿。
	ItemKindStory ItemKind = "story"
	// ItemKindJob は求人投稿。
	ItemKindJob ItemKind = "job"
	// ItemKindPoll は投票。
	ItemKindPoll ItemKind = "poll"
	// ItemKindComment はコメント。
	ItemKindComment ItemKind = "comment"
)

// Item は上流APIから取得した1件の記事を表す。
// 取得後は変更しない。再取得時はキャッシュエントリごと置き換える。
type Item struct {
	ID           int64
	Title        string
	Author       string
	Score        int
	CreatedAt    int64 // UNIX秒
	CommentCount int
	Kind         ItemKind
	TargetURL    string // 空の場合はテキストのみの投稿
	Text         string // サニタイズ済みHTML
}

// IsSelfPost は外部リンクを持たない投稿かを返す。
func (i *Item) IsSelfPost() bool {
	return i.TargetURL == ""
}

// DiscussionURL はHacker News上の議論ページのURLを返す。
func (i *Item) DiscussionURL() string {
	return fmt.Sprintf(discussionURLFormat, i.ID)
}

// Link は外部リンク、なければ議論ページのURLを返す。
func (i *Item) Link() string {
	if i.TargetURL != "" {
		return i.TargetURL
	}
	return i.DiscussionURL()
}

// CreatedTime は作成日時をtime.Timeで返す。未設定の場合はゼロ値。
func (i *Item) CreatedTime() time.Time {
	if i.CreatedAt <= 0 {
		return time.Time{}
	}
	return time.Unix(i.CreatedAt, 0).UTC()
}
