// Package feed は組み立て済みのページをRSS 2.0として出力する。
package feed

import (
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/gorilla/feeds"

	"github.com/hitoshi/storybrowser/internal/model"
)

const (
	siteURL = "https://news.ycombinator.com/"
	// excerptLength は説明文に含める本文の最大文字数。
	excerptLength = 280
)

// Page はRSSに変換するページ。
type Page struct {
	Category model.Category
	Page     int
	PageSize int
	Items    []*model.Item
}

// Render はページをRSS 2.0のXMLに変換する。
// 記事の並びはページの順序を保持する。nowはフィードの更新日時と相対時刻の基準。
func Render(p Page, now time.Time) (string, error) {
	title := fmt.Sprintf("Hacker News: %s", p.Category.Label())
	if p.Page > 1 {
		title = fmt.Sprintf("%s (page %d)", title, p.Page)
	}

	f := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: siteURL},
		Description: fmt.Sprintf("%s stories, %d per page", p.Category.Label(), p.PageSize),
		Id:          fmt.Sprintf("tag:news.ycombinator.com,2024:%s:%d:%d", p.Category, p.Page, p.PageSize),
		Created:     now,
		Updated:     now,
	}

	f.Items = make([]*feeds.Item, 0, len(p.Items))
	for _, item := range p.Items {
		f.Items = append(f.Items, toFeedItem(item, now))
	}

	rss, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("RSSの生成に失敗しました: %w", err)
	}
	return rss, nil
}

func toFeedItem(item *model.Item, now time.Time) *feeds.Item {
	fi := &feeds.Item{
		Title:       item.Title,
		Link:        &feeds.Link{Href: item.Link()},
		Id:          strconv.FormatInt(item.ID, 10),
		Description: description(item, now),
		Created:     item.CreatedTime(),
	}
	if item.Author != "" {
		fi.Author = &feeds.Author{Name: item.Author}
	}
	return fi
}

// description は説明文のHTMLを組み立てる。本文は抜粋のみ含める。
func description(item *model.Item, now time.Time) string {
	meta := fmt.Sprintf("%d points by %s %s | %d comments",
		item.Score,
		html.EscapeString(authorOrUnknown(item.Author)),
		model.TimeAgo(item.CreatedAt, now),
		item.CommentCount,
	)
	if host := model.HostName(item.TargetURL); host != "" {
		meta += " | " + html.EscapeString(host)
	}

	out := "<p>" + meta + "</p>"
	if excerpt := PlainText(item.Text, excerptLength); excerpt != "" {
		out += "<p>" + html.EscapeString(excerpt) + "</p>"
	}
	out += fmt.Sprintf(`<p><a href="%s">Discussion</a></p>`, item.DiscussionURL())
	return out
}

func authorOrUnknown(author string) string {
	if author == "" {
		return "unknown"
	}
	return author
}
