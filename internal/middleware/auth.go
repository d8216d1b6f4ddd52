// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/sitetrack/internal/model"
)

// AuthTokenHeader はアクセストークンを受け取るリクエストヘッダー。
const AuthTokenHeader = "x-auth-token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// actorContextKey はリクエストコンテキストに認証済みActorを格納するためのキー。
var actorContextKey = contextKey("actor")

// Authenticator はトークンからユーザーを解決するインターフェース。
// auth.Serviceが実装する。
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// NewAuthMiddleware はリクエストのアクセストークンを検証し、
// 認証済みActorをリクエストコンテキストに注入するミドルウェアを返す。
// トークンがない場合は401、無効な場合は400を返す。
func NewAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticator.Authenticate(r.Context(), TokenFromRequest(r))
			if err != nil {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) {
					slog.Error("failed to authenticate request", slog.String("error", err.Error()))
					WriteInternalServerError(w)
					return
				}
				if apiErr.Code == model.ErrCodeSystem {
					slog.Error("failed to authenticate request", slog.String("error", err.Error()))
				}
				WriteAPIError(w, apiErr)
				return
			}

			actor := model.Actor{ID: user.ID, IsAdmin: user.Admin}
			annotateRequestLog(r.Context(), actor.ID)
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// NewAdminMiddleware は管理者以外のリクエストを403で拒否するミドルウェアを返す。
// NewAuthMiddlewareの後に配置する。
func NewAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				WriteAPIError(w, model.NewNoTokenError())
				return
			}
			if !actor.IsAdmin {
				WriteAPIError(w, model.NewNotAuthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest はx-auth-tokenヘッダー、またはAuthorization: Bearerからトークンを取り出す。
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AuthTokenHeader)); token != "" {
		return token
	}
	authz := r.Header.Get("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

// ActorFromContext はリクエストコンテキストから認証済みActorを取得する。
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(model.Actor)
	if !ok || actor.ID == "" {
		return model.Actor{}, false
	}
	return actor, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return actor.ID, nil
}

// ContextWithActor はコンテキストにActorを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}
