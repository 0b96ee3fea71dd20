package feed

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// PlainText は記事本文のHTMLからテキストのみを取り出す。
// 段落と改行は空白1つにまとめ、maxRunesを超える場合は末尾を "…" に置き換える。
// maxRunesが0以下の場合は切り詰めない。
func PlainText(htmlBody string, maxRunes int) string {
	if htmlBody == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(htmlBody))

loop:
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "p", "br", "pre", "li":
				b.WriteByte(' ')
			}
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}
