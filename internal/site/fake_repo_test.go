package site

import (
	"context"
	"sync"

	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/repository"
)

// memorySiteRepo は条件付き書き込みを再現するメモリ上のSiteRepository。
type memorySiteRepo struct {
	mu    sync.Mutex
	order []string
	byURL map[string]*model.Site

	saves int
	// beforeSave はSave直前に呼ばれ、競合の注入などに使う。
	beforeSave func(site *model.Site)
	saveErr    error
	findErr    error
}

var _ repository.SiteRepository = (*memorySiteRepo)(nil)

func newMemorySiteRepo() *memorySiteRepo {
	return &memorySiteRepo{byURL: make(map[string]*model.Site)}
}

func (r *memorySiteRepo) FindByURL(ctx context.Context, url string) (*model.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.byURL[url].Clone(), nil
}

func (r *memorySiteRepo) Save(ctx context.Context, site *model.Site) error {
	if r.beforeSave != nil {
		r.beforeSave(site)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}

	current, exists := r.byURL[site.URL]
	switch {
	case site.Version == 0 && exists:
		return repository.ErrVersionConflict
	case site.Version != 0 && (!exists || current.Version != site.Version):
		return repository.ErrVersionConflict
	}

	stored := site.Clone()
	stored.Version = site.Version + 1
	if !exists {
		r.order = append(r.order, site.URL)
	}
	r.byURL[site.URL] = stored
	site.Version = stored.Version
	r.saves++
	return nil
}

func (r *memorySiteRepo) List(ctx context.Context) ([]*model.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sites := make([]*model.Site, 0, len(r.order))
	for _, url := range r.order {
		sites = append(sites, r.byURL[url].Clone())
	}
	return sites, nil
}

func (r *memorySiteRepo) ListByUser(ctx context.Context, userID string) ([]*model.Site, error) {
	all, _ := r.List(ctx)
	var sites []*model.Site
	for _, s := range all {
		if s.OccurrenceIndex(userID) >= 0 {
			sites = append(sites, s)
		}
	}
	return sites, nil
}

// stored はテスト検証用に保存済みのSiteを返す。
func (r *memorySiteRepo) stored(url string) *model.Site {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byURL[url].Clone()
}

// bump は他の書き込みが先に成功したことを模擬する。
func (r *memorySiteRepo) bump(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byURL[url]; ok {
		s.Version++
	}
}
