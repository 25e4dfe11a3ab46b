package security

import (
	"testing"
)

// TestNewTextSanitizer はTextSanitizerの生成をテストする。
func TestNewTextSanitizer(t *testing.T) {
	s := NewTextSanitizer()
	if s == nil {
		t.Fatal("NewTextSanitizer() returned nil")
	}
}

// TestSanitize_PlainTextUnchanged はプレーンテキストがそのまま通過することをテストする。
func TestSanitize_PlainTextUnchanged(t *testing.T) {
	s := NewTextSanitizer()

	input := "Unauthorized copy of my video series"
	if got := s.Sanitize(input); got != input {
		t.Errorf("Sanitize(%q) = %q, want unchanged", input, got)
	}
}

// TestSanitize_StripsScriptTag はscriptタグが除去されることをテストする。
func TestSanitize_StripsScriptTag(t *testing.T) {
	s := NewTextSanitizer()

	got := s.Sanitize(`Stolen content<script>alert("xss")</script>`)
	if got != "Stolen content" {
		t.Errorf("Sanitize() = %q, want %q", got, "Stolen content")
	}
}

// TestSanitize_StripsAllMarkup は通常のマークアップも全て除去されることをテストする。
func TestSanitize_StripsAllMarkup(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold", "<b>important</b> case", "important case"},
		{"link", `see <a href="https://evil.example.com">here</a>`, "see here"},
		{"image", `photo <img src="https://example.com/x.png" alt="x"> stolen`, "photo  stolen"},
		{"nested", "<div><p>description</p></div>", "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_DecodesEntities はタグ除去後にHTMLエンティティがデコードされることをテストする。
func TestSanitize_DecodesEntities(t *testing.T) {
	s := NewTextSanitizer()

	got := s.Sanitize("Tom &amp; Jerry")
	if got != "Tom & Jerry" {
		t.Errorf("Sanitize() = %q, want %q", got, "Tom & Jerry")
	}
}

// TestSanitize_TrimsWhitespace は前後の空白がトリムされることをテストする。
func TestSanitize_TrimsWhitespace(t *testing.T) {
	s := NewTextSanitizer()

	got := s.Sanitize("  padded title  ")
	if got != "padded title" {
		t.Errorf("Sanitize() = %q, want %q", got, "padded title")
	}
}

// TestSanitize_EmptyInput は空文字列の入力に空文字列を返すことをテストする。
func TestSanitize_EmptyInput(t *testing.T) {
	s := NewTextSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことをテストする。
func TestSanitize_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	input := `<p>copy</p> of &quot;my work&quot;`
	first := s.Sanitize(input)
	second := s.Sanitize(first)
	if first != second {
		t.Errorf("Sanitize is not idempotent: first=%q second=%q", first, second)
	}
}

// TestTextSanitizerInterface はTextSanitizerがインターフェースを正しく実装していることをテストする。
func TestTextSanitizerInterface(t *testing.T) {
	var _ TextSanitizerService = NewTextSanitizer()
}
