// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/sitetrack/internal/auth"
	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/repository"
	"github.com/hitoshi/sitetrack/internal/security"
)

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email    string
	Name     string
	Surname  string
	Password string
}

// UpdateInput はプロフィール更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Email    *string
	Name     *string
	Surname  *string
	Password *string
}

// Service はユーザー管理のサービス層。
// 名前と姓はタグを除去したプレーンテキストとして保存する。
type Service struct {
	userRepo   repository.UserRepository
	bcryptCost int
	sanitizer  security.TextSanitizer
	now        func() time.Time
}

// Option はServiceの設定を変更する関数。
type Option func(*Service)

// WithSanitizer は名前の無害化に使うTextSanitizerを差し替える。
func WithSanitizer(ts security.TextSanitizer) Option {
	return func(s *Service) {
		if ts != nil {
			s.sanitizer = ts
		}
	}
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, bcryptCost int, opts ...Option) *Service {
	s := &Service{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		sanitizer:  security.NewTextSanitizer(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register は新しいユーザーを登録する。
// メールアドレスが登録済みの場合はUSER_EXISTSを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w: %w", model.NewSystemError(), err)
	}
	if existing != nil {
		return nil, model.NewUserExistsError()
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.NewSystemError(), err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         s.sanitizer.Sanitize(in.Name),
		Surname:      s.sanitizer.Sanitize(in.Surname),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 確認と作成の間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewUserExistsError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w: %w", model.NewSystemError(), err)
	}

	slog.Info("ユーザーを登録しました", slog.String("user_id", user.ID))
	return user, nil
}

// Me はactor本人のユーザー情報を返す。
func (s *Service) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w: %w", model.NewSystemError(), err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// List は全ユーザーを返す。管理者のみ。
func (s *Service) List(ctx context.Context, actor model.Actor) ([]*model.User, error) {
	if !actor.IsAdmin {
		return nil, model.NewNotAuthorizedError()
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w: %w", model.NewSystemError(), err)
	}
	return users, nil
}

// Update はactor本人のプロフィールを更新する。
// メールアドレスを変更する場合は他のユーザーと重複しないこと。
func (s *Service) Update(ctx context.Context, actor model.Actor, in UpdateInput) (*model.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			other, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w: %w", model.NewSystemError(), err)
			}
			if other != nil {
				return nil, model.NewUserExistsError()
			}
			user.Email = email
		}
	}
	if in.Name != nil {
		user.Name = s.sanitizer.Sanitize(*in.Name)
	}
	if in.Surname != nil {
		user.Surname = s.sanitizer.Sanitize(*in.Surname)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.NewSystemError(), err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewUserExistsError()
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w: %w", model.NewSystemError(), err)
	}

	slog.Info("ユーザー情報を更新しました", slog.String("user_id", user.ID))
	return user, nil
}

// PurgeAll は全ユーザーを削除する。開発環境でのみ呼び出すこと。
func (s *Service) PurgeAll(ctx context.Context) error {
	if err := s.userRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("ユーザーの一括削除に失敗しました: %w: %w", model.NewSystemError(), err)
	}
	slog.Warn("全ユーザーを削除しました")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
