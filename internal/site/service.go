package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/repository"
)

// DefaultMaxAttempts は条件付き書き込みが競合した場合の既定の試行回数。
const DefaultMaxAttempts = 3

// Metrics はServiceが記録するメトリクスのインターフェース。
type Metrics interface {
	RecordVisitRecorded(open bool)
	RecordVisitClosed(minutes int)
	RecordVersionConflict(op string)
	RecordSessionsPruned(count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordVisitRecorded(bool)     {}
func (noopMetrics) RecordVisitClosed(int)        {}
func (noopMetrics) RecordVersionConflict(string) {}
func (noopMetrics) RecordSessionsPruned(int)     {}

// Service はサイト訪問の記録・終了・集計を行うサービス層。
// 1操作はSiteドキュメント1件の読み込みと条件付き書き込みで完結する。
type Service struct {
	repo        repository.SiteRepository
	ledger      *Ledger
	metrics     Metrics
	maxAttempts int
}

// Option はServiceの設定を変更する関数。
type Option func(*Service)

// WithMetrics はメトリクス収集先を設定する。
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMaxAttempts は競合時の試行回数を設定する。1未満の値は無視する。
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.SiteRepository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		ledger:      NewLedger(),
		metrics:     noopMetrics{},
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordVisit はactorの訪問を記録する。
// endがnilの場合は未終了の訪問を作成し、そのrecordIDを返す。
// endが指定された場合は経過分数を即時に加算し、空のrecordIDを返す。
// 時刻はTimePrecisionに切り捨てて扱う。
func (s *Service) RecordVisit(ctx context.Context, actor model.Actor, rawURL string, start time.Time, end *time.Time) (string, error) {
	url, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	start = start.Truncate(TimePrecision)
	if end != nil {
		e := end.Truncate(TimePrecision)
		end = &e
	}

	var recordID string
	err = s.update(ctx, "record", url, true, func(site *model.Site) error {
		recordID = s.ledger.Record(site, actor.ID, start, end)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.metrics.RecordVisitRecorded(end == nil)
	slog.Debug("訪問を記録しました",
		slog.String("url", url),
		slog.String("user_id", actor.ID),
		slog.String("record_id", recordID),
	)
	return recordID, nil
}

// CloseVisit はactorの未終了訪問recordIDを終了し、経過分数を集計に加算する。
// 経過分数が1未満の場合はBAD_VALUEを返し、Siteは保存しない。
func (s *Service) CloseVisit(ctx context.Context, actor model.Actor, rawURL, recordID string, end time.Time) error {
	url, err := NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	end = end.Truncate(TimePrecision)

	var minutes int
	err = s.update(ctx, "close", url, false, func(site *model.Site) error {
		m, err := s.ledger.Close(site, actor.ID, recordID, end)
		if err != nil {
			return err
		}
		minutes = m
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordVisitClosed(minutes)
	slog.Debug("訪問を終了しました",
		slog.String("url", url),
		slog.String("user_id", actor.ID),
		slog.String("record_id", recordID),
		slog.Int("minutes", minutes),
	)
	return nil
}

// ListAll は全Siteドキュメントを返す。管理者のみ。
func (s *Service) ListAll(ctx context.Context, actor model.Actor) ([]*model.Site, error) {
	if !actor.IsAdmin {
		return nil, model.NewNotAuthorizedError()
	}
	sites, err := s.repo.List(ctx)
	if err != nil {
		return nil, systemError("サイト一覧の取得に失敗しました", err)
	}
	return sites, nil
}

// ListForUser はuserIDの訪問記録をサイトごとに射影して返す。
// 本人以外の記録を参照するには管理者権限が必要。
func (s *Service) ListForUser(ctx context.Context, actor model.Actor, userID string) ([]model.UserSite, error) {
	if !actor.CanAccessUser(userID) {
		return nil, model.NewNotAuthorizedError()
	}
	sites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, systemError("ユーザーの訪問記録の取得に失敗しました", err)
	}

	result := make([]model.UserSite, 0, len(sites))
	for _, site := range sites {
		if us, ok := ProjectForUser(site, userID); ok {
			result = append(result, us)
		}
	}
	return result, nil
}

// PruneOpenSessions はcutoffより前に開始された未終了訪問を全Siteから削除し、
// 削除件数の合計を返す。競合したSiteは次回の実行に回す。
func (s *Service) PruneOpenSessions(ctx context.Context, cutoff time.Time) (int, error) {
	sites, err := s.repo.List(ctx)
	if err != nil {
		return 0, systemError("サイト一覧の取得に失敗しました", err)
	}

	total := 0
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		removed := s.ledger.PruneOpenSessions(site, cutoff)
		if removed == 0 {
			continue
		}
		if err := s.repo.Save(ctx, site); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				s.metrics.RecordVersionConflict("prune")
				slog.Warn("放置訪問の削除が競合したためスキップします",
					slog.String("url", site.URL),
				)
				continue
			}
			return total, systemError("放置訪問の削除に失敗しました", err)
		}
		total += removed
	}

	s.metrics.RecordSessionsPruned(total)
	return total, nil
}

// update はurlのSiteを読み込んでapplyを適用し、条件付きで保存する。
// 競合した場合は読み込みからやり直し、maxAttempts回失敗するとCONFLICTを返す。
func (s *Service) update(ctx context.Context, op, url string, create bool, apply func(*model.Site) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		site, err := s.repo.FindByURL(ctx, url)
		if err != nil {
			return systemError("サイトの取得に失敗しました", err)
		}
		if site == nil {
			if !create {
				return model.NewNoSiteError(url)
			}
			site = s.ledger.NewSite(url)
		}

		if err := apply(site); err != nil {
			return err
		}

		err = s.repo.Save(ctx, site)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return systemError("サイトの保存に失敗しました", err)
		}

		s.metrics.RecordVersionConflict(op)
		slog.Warn("サイトの同時更新を検出しました",
			slog.String("op", op),
			slog.String("url", url),
			slog.Int("attempt", attempt),
		)
	}
	return model.NewConflictError()
}

// systemError は永続化層のエラーをSYSTEM_ERRORとして包む。
func systemError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, model.NewSystemError(), err)
}
