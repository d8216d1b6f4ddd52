// Package security はユーザー入力の無害化を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキストとして保存する入力を無害化する。
type TextSanitizer interface {
	Sanitize(s string) string
}

// textSanitizer はbluemondayのStrictPolicyで全てのタグを除去する。
// Policyはスレッドセーフなので1インスタンスを共有してよい。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はHTMLを一切許可しないTextSanitizerを生成する。
// 名前などAPI応答でそのまま返すフィールドに使う。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses は実体参照で二重に符号化されたタグを剥がす回数の上限。
const maxPasses = 3

// Sanitize はタグを除去し、実体参照を元の文字に戻して前後の空白を詰める。
// 戻した結果が新たなタグになる場合に備え、変化しなくなるまで繰り返す。
func (s *textSanitizer) Sanitize(in string) string {
	out := in
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			break
		}
		out = next
	}
	return out
}
