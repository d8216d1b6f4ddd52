package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sitetrack/internal/model"
)

// SiteServiceInterface はサイトハンドラーが必要とするサービスインターフェース。
type SiteServiceInterface interface {
	// RecordVisit は訪問を記録し、未終了の場合はrecordIDを返す。
	RecordVisit(ctx context.Context, actor model.Actor, url string, start time.Time, end *time.Time) (string, error)
	// CloseVisit は未終了の訪問を終了する。
	CloseVisit(ctx context.Context, actor model.Actor, url, recordID string, end time.Time) error
	// ListAll は全Siteを返す（管理者のみ）。
	ListAll(ctx context.Context, actor model.Actor) ([]siteResponse, error)
	// ListForUser はuserIDの訪問記録を返す。
	ListForUser(ctx context.Context, actor model.Actor, userID string) ([]userSiteResponse, error)
}

// SiteHandler はサイト訪問のHTTPハンドラー。
type SiteHandler struct {
	service SiteServiceInterface
}

// NewSiteHandler はSiteHandlerを生成する。
func NewSiteHandler(service SiteServiceInterface) *SiteHandler {
	return &SiteHandler{service: service}
}

// recordVisitRequest は訪問記録リクエストのボディ。
type recordVisitRequest struct {
	URL       string     `json:"url" validate:"required"`
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   *time.Time `json:"endTime"`
}

// closeVisitRequest は訪問終了リクエストのボディ。
type closeVisitRequest struct {
	URL      string    `json:"url" validate:"required"`
	RecordID string    `json:"recordID" validate:"required"`
	EndTime  time.Time `json:"endTime" validate:"required"`
}

// RecordVisit は訪問を記録する。
//
// @Summary  訪問の記録
// @Tags     sites
// @Accept   json
// @Produce  json
// @Param    x-auth-token header string true "アクセストークン"
// @Param    body body recordVisitRequest true "訪問"
// @Success  201 {object} messageResponse
// @Failure  422 {object} middleware.ErrorResponseBody
// @Router   /api/sites [post]
func (h *SiteHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req recordVisitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	recordID, err := h.service.RecordVisit(r.Context(), actor, req.URL, req.StartTime, req.EndTime)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Status:   http.StatusCreated,
		Message:  "SAVED",
		RecordID: recordID,
	})
}

// CloseVisit は未終了の訪問を終了し、滞在時間を集計に加算する。
//
// @Summary  訪問の終了
// @Tags     sites
// @Accept   json
// @Produce  json
// @Param    x-auth-token header string true "アクセストークン"
// @Param    body body closeVisitRequest true "終了する訪問"
// @Success  200 {object} messageResponse
// @Failure  400 {object} middleware.ErrorResponseBody
// @Failure  404 {object} middleware.ErrorResponseBody
// @Failure  409 {object} middleware.ErrorResponseBody
// @Router   /api/sites [patch]
func (h *SiteHandler) CloseVisit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req closeVisitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.CloseVisit(r.Context(), actor, req.URL, req.RecordID, req.EndTime); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Status: http.StatusOK, Message: "SAVED"})
}

// ListAll は全Siteを返す。
// GET /api/sites
func (h *SiteHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	sites, err := h.service.ListAll(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if sites == nil {
		sites = []siteResponse{}
	}
	writeData(w, sites)
}

// ListMine はログインユーザーの訪問記録を返す。
// GET /api/sites/me
func (h *SiteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	h.listForUser(w, r, actor, actor.ID)
}

// ListForUser は指定ユーザーの訪問記録を返す。
// GET /api/sites/{id}
func (h *SiteHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	h.listForUser(w, r, actor, chi.URLParam(r, "id"))
}

func (h *SiteHandler) listForUser(w http.ResponseWriter, r *http.Request, actor model.Actor, userID string) {
	sites, err := h.service.ListForUser(r.Context(), actor, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if sites == nil {
		sites = []userSiteResponse{}
	}
	writeData(w, sites)
}
