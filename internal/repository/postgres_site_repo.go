package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/sitetrack/internal/model"
)

// PostgresSiteRepo はPostgreSQLを使用したSiteリポジトリ。
// OccurrenceとOpenSessionはJSONB列に埋め込み、Site単位で1行として保存する。
type PostgresSiteRepo struct {
	db *sql.DB
}

// NewPostgresSiteRepo はPostgresSiteRepoを生成する。
func NewPostgresSiteRepo(db *sql.DB) *PostgresSiteRepo {
	return &PostgresSiteRepo{db: db}
}

const siteColumns = `id, url, total_visits, total_time, occurrences, version, created_at, updated_at`

func scanSite(s rowScanner) (*model.Site, error) {
	site := &model.Site{}
	var occurrences []byte
	err := s.Scan(
		&site.ID, &site.URL, &site.TotalVisits, &site.TotalTime,
		&occurrences, &site.Version, &site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(occurrences, &site.Occurrences); err != nil {
		return nil, fmt.Errorf("failed to decode occurrences: %w", err)
	}
	return site, nil
}

// FindByURL は正規化済みURLでSiteを取得する。見つからない場合はnilを返す。
func (r *PostgresSiteRepo) FindByURL(ctx context.Context, url string) (*model.Site, error) {
	site, err := scanSite(r.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE url = $1`,
		url,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find site by url: %w", err)
	}
	return site, nil
}

// Save はSiteを条件付きで保存する。
// 新規作成はurlの一意制約、更新はversion列の一致を条件とする。
func (r *PostgresSiteRepo) Save(ctx context.Context, site *model.Site) error {
	occurrences, err := json.Marshal(site.Occurrences)
	if err != nil {
		return fmt.Errorf("failed to encode occurrences: %w", err)
	}

	var result sql.Result
	if site.Version == 0 {
		result, err = r.db.ExecContext(ctx,
			`INSERT INTO sites (`+siteColumns+`)
			 VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
			 ON CONFLICT (url) DO NOTHING`,
			site.ID, site.URL, site.TotalVisits, site.TotalTime,
			occurrences, site.CreatedAt, site.UpdatedAt,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE sites
			 SET total_visits = $3, total_time = $4, occurrences = $5,
			     version = version + 1, updated_at = $6
			 WHERE id = $1 AND version = $2`,
			site.ID, site.Version, site.TotalVisits, site.TotalTime,
			occurrences, site.UpdatedAt,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	site.Version++
	return nil
}

// List は全Siteを作成順に返す。
func (r *PostgresSiteRepo) List(ctx context.Context) ([]*model.Site, error) {
	return r.query(ctx,
		`SELECT `+siteColumns+` FROM sites ORDER BY created_at, id`,
	)
}

// ListByUser は指定ユーザーのOccurrenceを含むSiteを作成順に返す。
// JSONB包含演算子でoccurrences配列を検索する。
func (r *PostgresSiteRepo) ListByUser(ctx context.Context, userID string) ([]*model.Site, error) {
	filter, err := json.Marshal([]map[string]string{{"user": userID}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode user filter: %w", err)
	}
	return r.query(ctx,
		`SELECT `+siteColumns+` FROM sites
		 WHERE occurrences @> $1::jsonb
		 ORDER BY created_at, id`,
		string(filter),
	)
}

func (r *PostgresSiteRepo) query(ctx context.Context, query string, args ...any) ([]*model.Site, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*model.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sites: %w", err)
	}
	return sites, nil
}

// compile-time interface check
var _ SiteRepository = (*PostgresSiteRepo)(nil)
