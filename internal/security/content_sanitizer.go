// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー投稿テキスト（記事本文・商品説明・
// コメント）をサニタイズし、XSS攻撃などのセキュリティリスクから
// 他のユーザーを保護する。bluemondayライブラリの厳格ポリシーで、
// マークアップを一切通過させない。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー投稿テキストのサニタイズ機能のインターフェースを定義する。
// 記事・商品・コメントの保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize はテキストをサニタイズして安全なプレーンテキストを返す。
	// 投稿テキストはプレーンテキストとして扱うため、HTMLタグは全て除去される。
	// script, iframe, styleタグおよびon*イベント属性も当然除去対象になる。
	// 前後の空白は取り除かれる。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 投稿テキストはレスポンスでそのまま表示されるプレーンテキストなので、
// StrictPolicy（全タグ除去）を採用する。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストをサニタイズして安全なプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
