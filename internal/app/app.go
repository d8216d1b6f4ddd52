package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/sitetrack/internal/auth"
	"github.com/hitoshi/sitetrack/internal/config"
	"github.com/hitoshi/sitetrack/internal/database"
	"github.com/hitoshi/sitetrack/internal/handler"
	"github.com/hitoshi/sitetrack/internal/logger"
	"github.com/hitoshi/sitetrack/internal/metrics"
	"github.com/hitoshi/sitetrack/internal/middleware"
	"github.com/hitoshi/sitetrack/internal/site"
	"github.com/hitoshi/sitetrack/internal/user"
	"github.com/hitoshi/sitetrack/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. .envの読み込み（存在しない場合は無視）
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
		slog.String("env", cfg.AppEnv),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// newMetricsRegistry はランタイムメトリクスとアプリケーションメトリクスを登録したレジストリを返す。
func newMetricsRegistry() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// newSiteService はサイトサービスを設定に従って生成する。
func newSiteService(cfg *config.Config, repo *stores, collector *metrics.Collector) *site.Service {
	return site.NewService(repo.sites,
		site.WithMetrics(collector),
		site.WithMaxAttempts(cfg.SiteWriteAttempts),
	)
}

// runServe はAPIサーバーモードで起動する。
// ストアに接続し、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストア接続
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.close()

	// 2. メトリクス
	reg, collector := newMetricsRegistry()

	// 3. ドメインサービスの初期化
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenLifetime)
	if err != nil {
		return fmt.Errorf("failed to init token manager: %w", err)
	}
	authService := auth.NewService(st.users, tokens)
	userService := user.NewService(st.users, cfg.BcryptCost)
	siteService := newSiteService(cfg, st, collector)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Authenticator:     authService,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Logger:            slog.Default(),
		Metrics:           collector,
		Gatherer:          reg,
		Health:            st.health,

		AuthService: authService,
		UserService: handler.NewUserServiceAdapter(userService),
		SiteService: handler.NewSiteServiceAdapter(siteService),

		Development: cfg.IsDevelopment(),
	})

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serveUntilSignal(server, "API server")
}

// serveUntilSignal はサーバーを起動し、SIGINTまたはSIGTERMでグレースフルシャットダウンする。
func serveUntilSignal(server *http.Server, name string) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info(name+" starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("%s listen error: %w", name, err)
	case <-stop:
	}
	slog.Info("shutting down " + name + "...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s shutdown failed: %w", name, err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 放置された未終了訪問のクリーンアップジョブを実行し、/metricsを公開する。
// OPEN_SESSION_RETENTIONが0の場合はクリーンアップを行わない。
func runWorker(cfg *config.Config) error {
	// 1. ストア接続
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.close()

	// 2. メトリクス
	reg, collector := newMetricsRegistry()
	siteService := newSiteService(cfg, st, collector)

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. メトリクスサーバーをバックグラウンドで起動
	metricsServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           metrics.SetupMetricsRoute(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	// 4. クリーンアップジョブ
	if cfg.OpenSessionRetention <= 0 || cfg.CleanupInterval <= 0 {
		slog.Info("open session cleanup is disabled",
			slog.Duration("retention", cfg.OpenSessionRetention),
			slog.Duration("interval", cfg.CleanupInterval),
		)
		<-ctx.Done()
	} else {
		job := cleanup.NewCleanupJob(siteService, slog.Default(), cfg.OpenSessionRetention)
		job.Start(ctx, cfg.CleanupInterval)
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はストアのスキーマを準備する。
// PostgreSQLではすべての未適用マイグレーションを順番に適用し、
// MongoDBでは必要なインデックスを作成する。
func runMigrate(cfg *config.Config) error {
	if cfg.StoreDriver == config.DriverMongo {
		st, err := openStores(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("failed to prepare mongodb: %w", err)
		}
		st.close()
		slog.Info("mongodb indexes are ready")
		return nil
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.CurrentVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
