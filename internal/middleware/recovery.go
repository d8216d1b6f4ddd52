package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRecoveryMiddleware はハンドラー内のpanicを回収し、SYSTEM_ERRORの500レスポンスを返すミドルウェアを生成する。
// http.ErrAbortHandlerは接続を中断する合図なので回収せずに再送出する。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []slog.Attr{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				}
				if reqID := chimw.GetReqID(r.Context()); reqID != "" {
					attrs = append(attrs, slog.String("request_id", reqID))
				}
				slog.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				WriteInternalServerError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NewRequestIDMiddleware はX-Request-Idを引き継ぐか採番してコンテキストに格納し、
// レスポンスヘッダーにも同じ値を返すミドルウェアを生成する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				w.Header().Set(chimw.RequestIDHeader, reqID)
			}
			next.ServeHTTP(w, r)
		}))
	}
}
