package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// HostName はURLのホスト名を返す。先頭の "www." は取り除く。
// 空文字列や解析できないURLの場合は空文字列を返す。
func HostName(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// TimeAgo は作成時刻（UNIX秒）からの経過時間を英語の相対表記で返す。
func TimeAgo(createdAt int64, now time.Time) string {
	if createdAt <= 0 {
		return "unknown time ago"
	}

	seconds := now.Unix() - createdAt
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return plural(seconds, "second")
	}

	minutes := seconds / 60
	if minutes < 60 {
		return plural(minutes, "minute")
	}

	hours := minutes / 60
	if hours < 24 {
		return plural(hours, "hour")
	}

	days := hours / 24
	if days < 30 {
		return plural(days, "day")
	}

	months := days / 30
	if months < 12 {
		return plural(months, "month")
	}

	return plural(months/12, "year")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
