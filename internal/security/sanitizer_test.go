package security

import (
	"strings"
	"testing"
)

func TestTextSanitizer_KeepsAllowedMarkup(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"段落", "<p>hello</p>", "<p>hello</p>"},
		{"斜体", "<i>note</i>", "<i>note</i>"},
		{"整形済み", "<pre><code>x := 1</code></pre>", "<pre><code>x := 1</code></pre>"},
		{"プレーンテキスト", "just text", "just text"},
		{"エスケープ済み文字", "a &amp; b", "a &amp; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextSanitizer_RemovesDangerousMarkup(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name      string
		input     string
		forbidden string
	}{
		{"script", `<p>x</p><script>alert(1)</script>`, "<script"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, "<iframe"},
		{"style", `<style>body{}</style>`, "<style"},
		{"onイベント", `<p onclick="alert(1)">x</p>`, "onclick"},
		{"javascriptリンク", `<a href="javascript:alert(1)">x</a>`, "javascript:"},
		{"img", `<img src="https://example.com/a.png">`, "<img"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if strings.Contains(strings.ToLower(got), tt.forbidden) {
				t.Errorf("Sanitize(%q) = %q, %q を含んではならない", tt.input, got, tt.forbidden)
			}
		})
	}
}

func TestTextSanitizer_LinkAttributes(t *testing.T) {
	s := NewTextSanitizer()

	got := s.Sanitize(`<a href="https://example.com/page">link</a>`)
	for _, want := range []string{`href="https://example.com/page"`, `target="_blank"`, "noopener", "nofollow"} {
		if !strings.Contains(got, want) {
			t.Errorf("Sanitize() = %q, %q を含むべき", got, want)
		}
	}
}

func TestTextSanitizer_EmptyAndIdempotent(t *testing.T) {
	s := NewTextSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}

	input := `<p>See <a href="https://example.com">this</a><script>x</script></p>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("サニタイズは冪等であるべき: %q vs %q", once, twice)
	}
}
