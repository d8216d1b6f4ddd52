// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はメールアドレスとパスワードを検証し、アクセストークンを返す。
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler はログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=32"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Status      int    `json:"status"`
	AccessToken string `json:"accessToken"`
}

// Login はアクセストークンを発行する。
//
// @Summary  ログイン
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "認証情報"
// @Success  200 {object} loginResponse
// @Failure  400 {object} middleware.ErrorResponseBody
// @Failure  422 {object} middleware.ErrorResponseBody
// @Router   /api/auth [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Status:      http.StatusOK,
		AccessToken: token,
	})
}
