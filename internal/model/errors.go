package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// トークンやストア由来の生のエラーはサービス層でこの型に翻訳され、
// ハンドラー層にはこの型しか渡らない。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeArticleNotFound     = "ARTICLE_NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeCommentNotFound     = "COMMENT_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeNicknameTaken       = "NICKNAME_TAKEN"
)

// リソース種別。NotFoundエラーとForbiddenエラーの生成に使う。
const (
	ResourceArticle = "article"
	ResourceProduct = "product"
	ResourceComment = "comment"
)

// NewUnauthenticatedError は未認証エラーを生成する。
// アクセストークンの欠落・失効・改ざん、および対応ユーザーの不在を区別しない。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレスの不在とパスワードの不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRefreshTokenError はリフレッシュトークンの検証失敗エラーを生成する。
func NewInvalidRefreshTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRefreshToken,
		Message:  "リフレッシュトークンが無効です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewForbiddenError は所有者以外による変更操作のエラーを生成する。
// 認証済みだが権限がない状態を表し、Unauthenticatedとは区別される。
func NewForbiddenError(resource string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この%sを変更する権限がありません。", resourceLabel(resource)),
		Category: "auth",
		Action:   "自分が登録したものだけを変更できます。",
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
func NewNotFoundError(resource string, id int64) *APIError {
	code := ErrCodeArticleNotFound
	switch resource {
	case ResourceProduct:
		code = ErrCodeProductNotFound
	case ResourceComment:
		code = ErrCodeCommentNotFound
	}
	return &APIError{
		Code:     code,
		Message:  fmt.Sprintf("指定された%sが見つかりません: %d", resourceLabel(resource), id),
		Category: "resource",
		Action:   "IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に使用されています。",
		Category: "validation",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewNicknameTakenError はニックネーム重複エラーを生成する。
func NewNicknameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeNicknameTaken,
		Message:  "このニックネームは既に使用されています。",
		Category: "validation",
		Action:   "別のニックネームを指定してください。",
	}
}

// resourceLabel はリソース種別の日本語表記を返す。
func resourceLabel(resource string) string {
	switch resource {
	case ResourceArticle:
		return "記事"
	case ResourceProduct:
		return "商品"
	case ResourceComment:
		return "コメント"
	default:
		return "リソース"
	}
}
