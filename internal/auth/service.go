// Package auth はパスワード認証とアクセストークンの発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens *TokenManager) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w: %w", model.NewSystemError(), err)
	}
	if user == nil {
		return "", model.NewInvalidCredentialsError()
	}
	if !ComparePassword(user.PasswordHash, password) {
		slog.Info("login rejected", slog.String("user_id", user.ID))
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Admin)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w: %w", model.NewSystemError(), err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// Authenticate はトークンを検証し、トークンが指すユーザーを返す。
// トークンが空の場合はNO_TOKEN、不正またはユーザーが存在しない場合はINVALID_TOKENを返す。
// 管理者フラグはトークンではなく現在のユーザーレコードから判定する。
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewNoTokenError()
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		slog.Debug("token rejected", slog.String("error", err.Error()))
		return nil, model.NewInvalidTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w: %w", model.NewSystemError(), err)
	}
	if user == nil {
		return nil, model.NewInvalidTokenError()
	}
	return user, nil
}
