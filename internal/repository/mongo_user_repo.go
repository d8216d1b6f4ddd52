package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/sitetrack/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepo はMongoDBを使用したユーザーリポジトリ。
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo はusersコレクションを使うMongoUserRepoを生成する。
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

// EnsureIndexes はemailの一意インデックスを作成する。
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user error: %w", err)
	}
	return &user, nil
}

// Create はユーザーを作成する。
func (r *MongoUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Update はユーザーのプロフィールとパスワードハッシュを更新する。
func (r *MongoUserRepo) Update(ctx context.Context, user *model.User) error {
	update := bson.M{"$set": bson.M{
		"email":     user.Email,
		"name":      user.Name,
		"surname":   user.Surname,
		"password":  user.PasswordHash,
		"updatedAt": user.UpdatedAt,
	}}
	result, err := r.coll.UpdateByID(ctx, user.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}
	return nil
}

// List は全ユーザーを返す。
func (r *MongoUserRepo) List(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// DeleteAll は全ユーザーを削除する。emailの一意インデックスは残す。
func (r *MongoUserRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*MongoUserRepo)(nil)
