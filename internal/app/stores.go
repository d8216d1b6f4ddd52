package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hitoshi/sitetrack/internal/config"
	"github.com/hitoshi/sitetrack/internal/database"
	"github.com/hitoshi/sitetrack/internal/repository"
)

// stores はSTORE_DRIVERに応じて生成したリポジトリと接続をまとめる。
type stores struct {
	users  repository.UserRepository
	sites  repository.SiteRepository
	health interface{ Ping(ctx context.Context) error }
	close  func()
}

// sqlPinger は*sql.DBをヘルスチェック用のPingインターフェースに適合させる。
type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// openStores はストアに接続し、リポジトリを初期化する。
// MongoDBの場合は必要なインデックスを作成する。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		mdb, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		userRepo := repository.NewMongoUserRepo(mdb.Database)
		siteRepo := repository.NewMongoSiteRepo(mdb.Database)
		if err := ensureMongoIndexes(ctx, userRepo, siteRepo); err != nil {
			_ = mdb.Close(context.Background())
			return nil, err
		}

		slog.Info("mongodb connection established", slog.String("database", cfg.MongoDatabase))
		return &stores{
			users:  userRepo,
			sites:  siteRepo,
			health: mdb,
			close: func() {
				if err := mdb.Close(context.Background()); err != nil {
					slog.Warn("failed to disconnect mongodb", slog.String("error", err.Error()))
				}
			},
		}, nil

	default:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		slog.Info("database connection established")
		return &stores{
			users:  repository.NewPostgresUserRepo(db),
			sites:  repository.NewPostgresSiteRepo(db),
			health: sqlPinger{db: db},
			close:  func() { db.Close() },
		}, nil
	}
}

func ensureMongoIndexes(ctx context.Context, userRepo *repository.MongoUserRepo, siteRepo *repository.MongoSiteRepo) error {
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if err := siteRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create site indexes: %w", err)
	}
	return nil
}
