package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// ケースのタイトル・説明文の保存前に使用される。
// これらのフィールドはプレーンテキストとして扱うため、HTMLタグは全て除去する。
type TextSanitizerService interface {
	// Sanitize は入力テキストからHTMLタグを全て除去したプレーンテキストを返す。
	// タグ除去後にHTMLエンティティをデコードし、前後の空白をトリムする。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、script等の危険なタグも
// 通常のマークアップも全て除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからHTMLタグを全て除去したプレーンテキストを返す。
// bluemondayはタグ除去後のテキストをエスケープして返すため、
// プレーンテキストとして保存できるようエンティティをデコードし直す。
func (s *textSanitizer) Sanitize(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
