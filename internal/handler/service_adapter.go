package handler

import (
	"context"
	"time"

	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/site"
	"github.com/hitoshi/sitetrack/internal/user"
)

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
}

// openSessionResponse は未終了訪問のAPIレスポンス。
type openSessionResponse struct {
	ID        string    `json:"_id"`
	StartTime time.Time `json:"startTime"`
}

// occurrenceResponse はSite内のユーザー別集計のAPIレスポンス。
type occurrenceResponse struct {
	User       string                `json:"user"`
	Visits     int                   `json:"visits"`
	Time       int                   `json:"time"`
	Timestamps []openSessionResponse `json:"timestamps"`
}

// siteResponse はSiteドキュメントのAPIレスポンス。IDはユーザーと同じく_idで返す。
type siteResponse struct {
	ID          string               `json:"_id"`
	URL         string               `json:"url"`
	TotalVisits int                  `json:"totalVisits"`
	TotalTime   int                  `json:"totalTime"`
	Occurrences []occurrenceResponse `json:"occurrences"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// userSiteResponse はユーザー単位に射影したサイト訪問のAPIレスポンス。
type userSiteResponse struct {
	URL        string                `json:"url"`
	Visits     int                   `json:"visits"`
	Time       int                   `json:"time"`
	Timestamps []openSessionResponse `json:"timestamps"`
}

// SiteServiceAdapter は site.Service を SiteServiceInterface に適合させるアダプタ。
type SiteServiceAdapter struct {
	svc *site.Service
}

// NewSiteServiceAdapter はSiteServiceAdapterを生成する。
func NewSiteServiceAdapter(svc *site.Service) *SiteServiceAdapter {
	return &SiteServiceAdapter{svc: svc}
}

// RecordVisit は訪問を記録する。
func (a *SiteServiceAdapter) RecordVisit(ctx context.Context, actor model.Actor, url string, start time.Time, end *time.Time) (string, error) {
	return a.svc.RecordVisit(ctx, actor, url, start, end)
}

// CloseVisit は未終了の訪問を終了する。
func (a *SiteServiceAdapter) CloseVisit(ctx context.Context, actor model.Actor, url, recordID string, end time.Time) error {
	return a.svc.CloseVisit(ctx, actor, url, recordID, end)
}

// ListAll は全Siteドキュメントをhandlerレスポンス型で返す。
func (a *SiteServiceAdapter) ListAll(ctx context.Context, actor model.Actor) ([]siteResponse, error) {
	sites, err := a.svc.ListAll(ctx, actor)
	if err != nil {
		return nil, err
	}

	results := make([]siteResponse, len(sites))
	for i, s := range sites {
		results[i] = toSiteResponse(s)
	}
	return results, nil
}

// ListForUser はユーザーの訪問記録をhandlerレスポンス型で返す。
func (a *SiteServiceAdapter) ListForUser(ctx context.Context, actor model.Actor, userID string) ([]userSiteResponse, error) {
	sites, err := a.svc.ListForUser(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	results := make([]userSiteResponse, len(sites))
	for i, us := range sites {
		results[i] = toUserSiteResponse(us)
	}
	return results, nil
}

func toOpenSessionResponses(sessions []model.OpenSession) []openSessionResponse {
	timestamps := make([]openSessionResponse, len(sessions))
	for i, ts := range sessions {
		timestamps[i] = openSessionResponse{ID: ts.ID, StartTime: ts.StartTime}
	}
	return timestamps
}

func toSiteResponse(s *model.Site) siteResponse {
	occurrences := make([]occurrenceResponse, len(s.Occurrences))
	for i, o := range s.Occurrences {
		occurrences[i] = occurrenceResponse{
			User:       o.User,
			Visits:     o.Visits,
			Time:       o.Time,
			Timestamps: toOpenSessionResponses(o.Timestamps),
		}
	}
	return siteResponse{
		ID:          s.ID,
		URL:         s.URL,
		TotalVisits: s.TotalVisits,
		TotalTime:   s.TotalTime,
		Occurrences: occurrences,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toUserSiteResponse(us model.UserSite) userSiteResponse {
	return userSiteResponse{
		URL:        us.URL,
		Visits:     us.Visits,
		Time:       us.Time,
		Timestamps: toOpenSessionResponses(us.Timestamps),
	}
}

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// Register はユーザーを登録する。
func (a *UserServiceAdapter) Register(ctx context.Context, in user.RegisterInput) error {
	_, err := a.svc.Register(ctx, in)
	return err
}

// Me はactor自身のユーザー情報を返す。
func (a *UserServiceAdapter) Me(ctx context.Context, actor model.Actor) (*userResponse, error) {
	u, err := a.svc.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// List は全ユーザーを返す。
func (a *UserServiceAdapter) List(ctx context.Context, actor model.Actor) ([]userResponse, error) {
	users, err := a.svc.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	results := make([]userResponse, len(users))
	for i, u := range users {
		results[i] = toUserResponse(u)
	}
	return results, nil
}

// Update はactor自身のプロフィールを更新する。
func (a *UserServiceAdapter) Update(ctx context.Context, actor model.Actor, in user.UpdateInput) (*userResponse, error) {
	u, err := a.svc.Update(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// PurgeAll は全ユーザーを削除する。
func (a *UserServiceAdapter) PurgeAll(ctx context.Context) error {
	return a.svc.PurgeAll(ctx)
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Surname:   u.Surname,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}

// --- compile-time interface checks ---

var _ SiteServiceInterface = (*SiteServiceAdapter)(nil)
var _ UserServiceInterface = (*UserServiceAdapter)(nil)
