package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/sitetrack/internal/middleware"
	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/user"
)

// --- モック定義 ---

type mockSiteService struct {
	recordVisitFn func(ctx context.Context, actor model.Actor, url string, start time.Time, end *time.Time) (string, error)
	closeVisitFn  func(ctx context.Context, actor model.Actor, url, recordID string, end time.Time) error
	listAllFn     func(ctx context.Context, actor model.Actor) ([]siteResponse, error)
	listForUserFn func(ctx context.Context, actor model.Actor, userID string) ([]userSiteResponse, error)
}

func (m *mockSiteService) RecordVisit(ctx context.Context, actor model.Actor, url string, start time.Time, end *time.Time) (string, error) {
	if m.recordVisitFn != nil {
		return m.recordVisitFn(ctx, actor, url, start, end)
	}
	return "", nil
}

func (m *mockSiteService) CloseVisit(ctx context.Context, actor model.Actor, url, recordID string, end time.Time) error {
	if m.closeVisitFn != nil {
		return m.closeVisitFn(ctx, actor, url, recordID, end)
	}
	return nil
}

func (m *mockSiteService) ListAll(ctx context.Context, actor model.Actor) ([]siteResponse, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, actor)
	}
	return nil, nil
}

func (m *mockSiteService) ListForUser(ctx context.Context, actor model.Actor, userID string) ([]userSiteResponse, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, actor, userID)
	}
	return nil, nil
}

type mockUserService struct {
	registerFn func(ctx context.Context, in user.RegisterInput) error
	meFn       func(ctx context.Context, actor model.Actor) (*userResponse, error)
	listFn     func(ctx context.Context, actor model.Actor) ([]userResponse, error)
	updateFn   func(ctx context.Context, actor model.Actor, in user.UpdateInput) (*userResponse, error)
	purgeAllFn func(ctx context.Context) error
}

func (m *mockUserService) Register(ctx context.Context, in user.RegisterInput) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil
}

func (m *mockUserService) Me(ctx context.Context, actor model.Actor) (*userResponse, error) {
	if m.meFn != nil {
		return m.meFn(ctx, actor)
	}
	return &userResponse{ID: actor.ID}, nil
}

func (m *mockUserService) List(ctx context.Context, actor model.Actor) ([]userResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, actor)
	}
	return nil, nil
}

func (m *mockUserService) Update(ctx context.Context, actor model.Actor, in user.UpdateInput) (*userResponse, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, actor, in)
	}
	return &userResponse{ID: actor.ID}, nil
}

func (m *mockUserService) PurgeAll(ctx context.Context) error {
	if m.purgeAllFn != nil {
		return m.purgeAllFn(ctx)
	}
	return nil
}

type mockAuthService struct {
	loginFn func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "", nil
}

// --- ヘルパー ---

var (
	testUser  = model.Actor{ID: "user-1"}
	testAdmin = model.Actor{ID: "admin-1", IsAdmin: true}
)

// jsonRequest はJSONボディとActorを持つリクエストを生成する。
// actorのIDが空の場合は未認証のリクエストになる。
func jsonRequest(method, path, body string, actor model.Actor) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor.ID != "" {
		req = req.WithContext(middleware.ContextWithActor(req.Context(), actor))
	}
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body
}
