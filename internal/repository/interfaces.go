// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/sitetrack/internal/model"
)

// ErrVersionConflict は条件付き書き込みが他の書き込みに負けたことを表す。
// 呼び出し側は最新のドキュメントを読み直して処理をやり直す。
var ErrVersionConflict = errors.New("site version conflict")

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーのプロフィールとパスワードハッシュを更新する。
	Update(ctx context.Context, user *model.User) error

	// List は全ユーザーを返す。
	List(ctx context.Context) ([]*model.User, error)

	// DeleteAll は全ユーザーを削除する。開発環境専用。
	DeleteAll(ctx context.Context) error
}

// SiteRepository はSiteドキュメントの永続化インターフェース。
// 1回の読み込みと1回の条件付き書き込みが1操作の境界になる。
type SiteRepository interface {
	// FindByURL は正規化済みURLでSiteを取得する。見つからない場合はnilを返す。
	// 返されるSiteは呼び出し側専用のコピーであり、自由に変更してよい。
	FindByURL(ctx context.Context, url string) (*model.Site, error)

	// Save はSiteを条件付きで保存する。
	// Version==0の場合は新規作成、それ以外はVersionが一致する場合のみ置き換える。
	// 条件を満たさない場合はErrVersionConflictを返す。
	// 成功時はsite.Versionを保存後の値に進める。
	Save(ctx context.Context, site *model.Site) error

	// List は全Siteを保存順に返す。
	List(ctx context.Context) ([]*model.Site, error)

	// ListByUser は指定ユーザーのOccurrenceを含むSiteを保存順に返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Site, error)
}
