package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Paramはエラーの原因となったリクエストフィールド（該当なしの場合は"system"等）。
type APIError struct {
	Code     string // エラーコード
	Param    string // 対象フィールド
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, not_found, bad_value, conflict, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Param, e.Message)
}

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryBadValue   = "bad_value"
	CategoryConflict   = "conflict"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeNoSite             = "NO_SITE"
	ErrCodeNoOccurrences      = "NO_OCCURRENCES"
	ErrCodeNoTimestamp        = "NO_TIMESTAMP"
	ErrCodeBadValue           = "BAD_VALUE"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeSystem             = "SYSTEM_ERROR"
	ErrCodeNoToken            = "NO_TOKEN"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeNotAuthorized      = "NOT_AUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
)

// NewValidationError はフィールド単位の入力エラーを生成する。
func NewValidationError(param, message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Param:    param,
		Message:  message,
		Category: CategoryValidation,
	}
}

// NewInvalidURLError は解析できないURLに対するエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Param:    "url",
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: CategoryValidation,
	}
}

// NewNoSiteError は指定URLのサイトが存在しない場合のエラーを生成する。
func NewNoSiteError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeNoSite,
		Param:    "url",
		Message:  fmt.Sprintf("サイトが見つかりません: %s", url),
		Category: CategoryNotFound,
	}
}

// NewNoOccurrencesError はユーザーの訪問記録が存在しない場合のエラーを生成する。
func NewNoOccurrencesError() *APIError {
	return &APIError{
		Code:     ErrCodeNoOccurrences,
		Param:    "url",
		Message:  "このサイトに対する訪問記録がありません。",
		Category: CategoryNotFound,
	}
}

// NewNoTimestampError は指定recordIDの未終了訪問が存在しない場合のエラーを生成する。
func NewNoTimestampError(recordID string) *APIError {
	return &APIError{
		Code:     ErrCodeNoTimestamp,
		Param:    "recordID",
		Message:  fmt.Sprintf("未終了の訪問が見つかりません: %s", recordID),
		Category: CategoryNotFound,
	}
}

// NewBadValueError は終了時刻が開始時刻より後でない場合のエラーを生成する。
func NewBadValueError() *APIError {
	return &APIError{
		Code:     ErrCodeBadValue,
		Param:    "endTime",
		Message:  "終了時刻は開始時刻より後である必要があります。",
		Category: CategoryBadValue,
	}
}

// NewConflictError は同時更新により書き込みが確定できなかった場合のエラーを生成する。
func NewConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Param:    "system",
		Message:  "同時に更新が行われました。再度お試しください。",
		Category: CategoryConflict,
	}
}

// NewSystemError は永続化失敗などの内部エラーを生成する。
func NewSystemError() *APIError {
	return &APIError{
		Code:     ErrCodeSystem,
		Param:    "system",
		Message:  "内部エラーが発生しました。",
		Category: CategorySystem,
	}
}

// NewNoTokenError はトークン未指定エラーを生成する。
func NewNoTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeNoToken,
		Param:    "x-auth-token",
		Message:  "トークンが指定されていません。",
		Category: CategoryAuth,
	}
}

// NewInvalidTokenError は無効なトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Param:    "x-auth-token",
		Message:  "トークンが無効です。",
		Category: CategoryAuth,
	}
}

// NewNotAuthorizedError は権限不足エラーを生成する。
func NewNotAuthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthorized,
		Param:    "user",
		Message:  "この操作を行う権限がありません。",
		Category: CategoryAuth,
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// 未登録メールアドレスとパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Param:    "credentials",
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryAuth,
	}
}

// NewUserExistsError は登録済みメールアドレスでの登録エラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Param:    "email",
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryValidation,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Param:    "user",
		Message:  "ユーザーが見つかりません。",
		Category: CategoryNotFound,
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Param:    "system",
		Message:  "リクエストが多すぎます。しばらく待ってから再度お試しください。",
		Category: CategorySystem,
	}
}
