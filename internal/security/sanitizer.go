package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は記事本文のHTMLを許可リストに基づいて無害化する。
// 上流の本文は段落、リンク、斜体、整形済みテキスト程度しか含まないため、
// それ以外の要素と属性はすべて除去する。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
//   - 許可タグ: p, br, a, i, em, b, strong, pre, code
//   - aタグ: http/httpsのhrefのみ許可し、target="_blank" と rel="nofollow noreferrer noopener" を付与
func NewTextSanitizer() *TextSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "i", "em", "b", "strong", "pre", "code")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(false)
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextSanitizer{policy: p}
}

// Sanitize はHTMLを無害化して返す。スレッドセーフ。
func (s *TextSanitizer) Sanitize(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}
	return s.policy.Sanitize(rawHTML)
}
