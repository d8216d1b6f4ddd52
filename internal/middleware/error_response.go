package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/sitetrack/internal/model"
)

// ErrorItem はエラーレスポンス中の1件のエラー。
type ErrorItem struct {
	Param   string `json:"param"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Status int         `json:"status"`
	Errors []ErrorItem `json:"errors"`
}

// HTTPStatus はAPIErrorのコードに対応するHTTPステータスを返す。
func HTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidURL:
		return http.StatusUnprocessableEntity
	case model.ErrCodeNoSite, model.ErrCodeNoOccurrences, model.ErrCodeNoTimestamp, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeBadValue, model.ErrCodeInvalidToken, model.ErrCodeInvalidCredentials, model.ErrCodeUserExists:
		return http.StatusBadRequest
	case model.ErrCodeNoToken:
		return http.StatusUnauthorized
	case model.ErrCodeNotAuthorized:
		return http.StatusForbidden
	case model.ErrCodeConflict:
		return http.StatusConflict
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeSystem:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErrs ...*model.APIError) {
	body := ErrorResponseBody{
		Status: statusCode,
		Errors: make([]ErrorItem, 0, len(apiErrs)),
	}
	for _, e := range apiErrs {
		body.Errors = append(body.Errors, ErrorItem{
			Param:   e.Param,
			Code:    e.Code,
			Message: e.Message,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteAPIError はAPIErrorをコードに対応するステータスで書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, HTTPStatus(apiErr), apiErr)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewSystemError())
}
