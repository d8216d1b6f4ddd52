// Package cleanup は放置された未終了訪問の自動削除ジョブを提供する。
// 開始から保持期間を超えても終了されなかった訪問を定期的に削除する。
// 未終了の訪問は滞在時間を持たないため、集計値は変化しない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner は基準時刻より前に開始された未終了訪問を削除する。
// site.Serviceが実装する。
type Pruner interface {
	PruneOpenSessions(ctx context.Context, cutoff time.Time) (int, error)
}

// CleanupJob は保持期間を超過した未終了訪問の削除ジョブ。
// 冪等であり、削除対象がない場合も成功する。
type CleanupJob struct {
	pruner    Pruner
	logger    *slog.Logger
	Retention time.Duration // 未終了訪問の保持期間
	now       func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(pruner Pruner, logger *slog.Logger, retention time.Duration) *CleanupJob {
	return &CleanupJob{
		pruner:    pruner,
		logger:    logger,
		Retention: retention,
		now:       time.Now,
	}
}

// Run は現在時刻からRetentionより前に開始された未終了訪問を削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()
	cutoff := start.Add(-j.Retention)

	deleted, err := j.pruner.PruneOpenSessions(ctx, cutoff)
	if err != nil {
		j.logger.Error("未終了訪問のクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("retention", j.Retention),
		)
		return fmt.Errorf("未終了訪問のクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("未終了訪問のクリーンアップが完了しました",
		slog.Int("deleted_count", deleted),
		slog.Time("cutoff", cutoff),
		slog.Duration("retention", j.Retention),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
	return nil
}

// Start はintervalごとにRunを実行する。起動直後にも1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("クリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Duration("retention", j.Retention),
	)

	// エラーはRun内でログ出力済み
	_ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
