package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/sitetrack/internal/middleware"
	"github.com/hitoshi/sitetrack/internal/model"
	"github.com/hitoshi/sitetrack/internal/validation"
)

// dataResponse は一覧・取得系の成功レスポンス。
type dataResponse struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

// messageResponse は作成・更新系の成功レスポンス。
type messageResponse struct {
	Status   int    `json:"status"`
	Message  string `json:"message,omitempty"`
	RecordID string `json:"recordID,omitempty"`
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeData は{status, data}形式の200レスポンスを書き込む。
func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataResponse{Status: http.StatusOK, Data: data})
}

// decodeAndValidate はリクエストボディをdstにデコードし、validateタグで検証する。
// 失敗した場合は422レスポンスを書き込み、falseを返す。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("body", "リクエストボディの解析に失敗しました。"))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		handleServiceError(w, err)
		return false
	}
	return true
}

// actorFromRequest は認証ミドルウェアが注入したActorを取り出す。
// 存在しない場合は401を書き込み、falseを返す。
func actorFromRequest(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewNoTokenError())
		return model.Actor{}, false
	}
	return actor, true
}

// handleServiceError はサービス層から返されたエラーを統一フォーマットのレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity, verrs...)
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeSystem {
			slog.Error("storage failure", slog.String("error", err.Error()))
		}
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
