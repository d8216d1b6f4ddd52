// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// パスワードはbcryptハッシュのみを保持する。
type User struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	Surname      string    `bson:"surname"`
	PasswordHash string    `bson:"password"`
	Admin        bool      `bson:"admin"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// Actor はリクエストを実行している認証済みユーザーを表す。
// トークン検証後に生成され、サービス層へ明示的に渡される。
type Actor struct {
	ID      string
	IsAdmin bool
}

// CanAccessUser は対象ユーザーのデータを参照できるかを返す。
// 本人または管理者のみ参照できる。
func (a Actor) CanAccessUser(userID string) bool {
	return a.IsAdmin || a.ID == userID
}
