package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/sitetrack/internal/model"
)

// mockAuthenticator はAuthenticatorのテスト用モック。
type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	return m.authenticateFn(ctx, token)
}

// tokenAuthenticator は"valid-token"と"admin-token"のみを受け付ける。
func tokenAuthenticator() *mockAuthenticator {
	return &mockAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*model.User, error) {
			switch token {
			case "":
				return nil, model.NewNoTokenError()
			case "valid-token":
				return &model.User{ID: "user-1"}, nil
			case "admin-token":
				return &model.User{ID: "admin-1", Admin: true}, nil
			default:
				return nil, model.NewInvalidTokenError()
			}
		},
	}
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// TestAuthMiddleware_ValidToken_InjectsActor は有効なトークンでActorが注入されることを検証する。
func TestAuthMiddleware_ValidToken_InjectsActor(t *testing.T) {
	var captured model.Actor
	handler := NewAuthMiddleware(tokenAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites/me", nil)
	req.Header.Set(AuthTokenHeader, "admin-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured.ID != "admin-1" || !captured.IsAdmin {
		t.Errorf("actor = %+v, want admin-1/admin", captured)
	}
}

// TestAuthMiddleware_BearerToken はAuthorizationヘッダーのBearerトークンを受け付けることを検証する。
func TestAuthMiddleware_BearerToken(t *testing.T) {
	called := false
	handler := NewAuthMiddleware(tokenAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Errorf("handler should be called, status = %d", w.Code)
	}
}

// TestAuthMiddleware_NoToken_Returns401 はトークンなしで401が返ることを検証する。
func TestAuthMiddleware_NoToken_Returns401(t *testing.T) {
	handler := NewAuthMiddleware(tokenAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, w)
	if body.Status != http.StatusUnauthorized || len(body.Errors) != 1 || body.Errors[0].Code != model.ErrCodeNoToken {
		t.Errorf("body = %+v", body)
	}
}

// TestAuthMiddleware_InvalidToken_Returns400 は無効なトークンで400が返ることを検証する。
func TestAuthMiddleware_InvalidToken_Returns400(t *testing.T) {
	handler := NewAuthMiddleware(tokenAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites/me", nil)
	req.Header.Set(AuthTokenHeader, "forged")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := decodeErrorBody(t, w)
	if body.Errors[0].Param != AuthTokenHeader {
		t.Errorf("param = %q, want %q", body.Errors[0].Param, AuthTokenHeader)
	}
}

// TestAuthMiddleware_SystemError_Returns503 は認証時のストアエラーで503が返ることを検証する。
func TestAuthMiddleware_SystemError_Returns503(t *testing.T) {
	auth := &mockAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*model.User, error) {
			return nil, fmt.Errorf("lookup: %w: %w", model.NewSystemError(), errors.New("db down"))
		},
	}
	handler := NewAuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites/me", nil)
	req.Header.Set(AuthTokenHeader, "valid-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// TestAdminMiddleware は管理者のみが通過できることを検証する。
func TestAdminMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"管理者", "admin-token", http.StatusOK},
		{"一般ユーザー", "valid-token", http.StatusForbidden},
		{"未認証", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthMiddleware(tokenAuthenticator())(
				NewAdminMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				})),
			)

			req := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
			if tt.token != "" {
				req.Header.Set(AuthTokenHeader, tt.token)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Code == http.StatusForbidden {
				body := decodeErrorBody(t, w)
				if body.Errors[0].Param != "user" || body.Errors[0].Code != model.ErrCodeNotAuthorized {
					t.Errorf("body = %+v", body)
				}
			}
		})
	}
}

// TestAdminMiddleware_WithoutAuth_Returns401 は認証ミドルウェアなしで401が返ることを検証する。
func TestAdminMiddleware_WithoutAuth_Returns401(t *testing.T) {
	handler := NewAdminMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"x-auth-token", map[string]string{AuthTokenHeader: "abc"}, "abc"},
		{"Bearer", map[string]string{"Authorization": "Bearer def"}, "def"},
		{"bearer小文字", map[string]string{"Authorization": "bearer ghi"}, "ghi"},
		{"x-auth-token優先", map[string]string{AuthTokenHeader: "abc", "Authorization": "Bearer def"}, "abc"},
		{"Basicは無視", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, ""},
		{"なし", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := TokenFromRequest(req); got != tt.want {
				t.Errorf("TokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for empty context")
	}

	ctx := ContextWithActor(context.Background(), model.Actor{ID: "user-9"})
	id, err := UserIDFromContext(ctx)
	if err != nil || id != "user-9" {
		t.Errorf("UserIDFromContext() = %q, %v; want user-9", id, err)
	}
}
