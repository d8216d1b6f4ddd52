package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoConnectTimeout は接続確認（Ping）のタイムアウト。
const mongoConnectTimeout = 10 * time.Second

// MongoDB はMongoDBクライアントと利用するデータベースをまとめる。
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// OpenMongo はMongoDBに接続し、Pingで到達性を確認する。
// 呼び出し側はClose()で切断すること。
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Close はMongoDBとの接続を切断する。
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// Ping はプライマリへの疎通を確認する。ヘルスチェックで使用する。
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}
