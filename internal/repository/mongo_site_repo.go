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

// MongoSiteRepo はMongoDBを使用したSiteリポジトリ。
// Siteを1ドキュメントとして保存し、ドキュメント単位の原子性に依存する。
type MongoSiteRepo struct {
	coll *mongo.Collection
}

// NewMongoSiteRepo はsitesコレクションを使うMongoSiteRepoを生成する。
func NewMongoSiteRepo(db *mongo.Database) *MongoSiteRepo {
	return &MongoSiteRepo{coll: db.Collection("sites")}
}

// EnsureIndexes はurlの一意インデックスとユーザー検索用インデックスを作成する。
func (r *MongoSiteRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "occurrences.user", Value: 1}},
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create site indexes: %w", err)
	}
	return nil
}

// FindByURL は正規化済みURLでSiteを取得する。見つからない場合はnilを返す。
func (r *MongoSiteRepo) FindByURL(ctx context.Context, url string) (*model.Site, error) {
	var site model.Site
	err := r.coll.FindOne(ctx, bson.M{"url": url}).Decode(&site)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find site error: %w", err)
	}
	return &site, nil
}

// Save はSiteを条件付きで保存する。
// 新規作成はurlの一意インデックス、更新は_idとversionの一致を条件とする。
func (r *MongoSiteRepo) Save(ctx context.Context, site *model.Site) error {
	doc := *site
	doc.Version = site.Version + 1

	if site.Version == 0 {
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to insert site: %w", err)
		}
	} else {
		filter := bson.M{"_id": site.ID, "version": site.Version}
		result, err := r.coll.ReplaceOne(ctx, filter, doc)
		if err != nil {
			return fmt.Errorf("failed to replace site: %w", err)
		}
		if result.MatchedCount == 0 {
			return ErrVersionConflict
		}
	}

	site.Version = doc.Version
	return nil
}

// List は全Siteを自然順で返す。
func (r *MongoSiteRepo) List(ctx context.Context) ([]*model.Site, error) {
	return r.find(ctx, bson.M{})
}

// ListByUser は指定ユーザーのOccurrenceを含むSiteを自然順で返す。
func (r *MongoSiteRepo) ListByUser(ctx context.Context, userID string) ([]*model.Site, error) {
	return r.find(ctx, bson.M{"occurrences.user": userID})
}

func (r *MongoSiteRepo) find(ctx context.Context, filter bson.M) ([]*model.Site, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer cursor.Close(ctx)

	var sites []*model.Site
	if err := cursor.All(ctx, &sites); err != nil {
		return nil, fmt.Errorf("failed to decode sites: %w", err)
	}
	return sites, nil
}

// compile-time interface check
var _ SiteRepository = (*MongoSiteRepo)(nil)
