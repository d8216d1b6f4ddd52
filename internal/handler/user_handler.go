package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Register(ctx context.Context, in user.RegisterInput) error
	Me(ctx context.Context, actor model.Actor) (*userResponse, error)
	List(ctx context.Context, actor model.Actor) ([]userResponse, error)
	Update(ctx context.Context, actor model.Actor, in user.UpdateInput) (*userResponse, error)
	// PurgeAll は全ユーザーを削除する。開発環境専用。
	PurgeAll(ctx context.Context) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service     UserServiceInterface
	development bool
}

// NewUserHandler はUserHandlerを生成する。
// developmentがfalseの場合、全ユーザー削除は常に拒否する。
func NewUserHandler(service UserServiceInterface, development bool) *UserHandler {
	return &UserHandler{
		service:     service,
		development: development,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=32"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=4,max=32"`
}

// Register は新しいユーザーを登録する。
// POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.Register(r.Context(), user.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Status:  http.StatusCreated,
		Message: "User created!",
	})
}

// Me はログインユーザーの情報を返す。
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	u, err := h.service.Me(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, u)
}

// List は全ユーザーを返す。
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	users, err := h.service.List(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if users == nil {
		users = []userResponse{}
	}
	writeData(w, users)
}

// Update はログインユーザーのプロフィールを更新する。
// PATCH /api/users/me
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.service.Update(r.Context(), actor, user.UpdateInput{
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, u)
}

// PurgeAll は全ユーザーを削除する。開発環境以外では404を返す。
// DELETE /api/users/delete
func (h *UserHandler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	if !h.development {
		http.NotFound(w, r)
		return
	}

	if err := h.service.PurgeAll(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Status: http.StatusOK})
}
