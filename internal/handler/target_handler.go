package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contentguard/internal/middleware"
	"github.com/hitoshi/contentguard/internal/model"
)

// TargetServiceInterface はターゲットハンドラーが必要とするサービスインターフェース。
type TargetServiceInterface interface {
	ListTargets(ctx context.Context, caseID, clientID string) ([]*model.Target, error)
	AddTargets(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error)
}

// TargetHandler は削除対象URL管理のHTTPハンドラー。
type TargetHandler struct {
	service TargetServiceInterface
}

// NewTargetHandler はTargetHandlerを生成する。
func NewTargetHandler(service TargetServiceInterface) *TargetHandler {
	return &TargetHandler{service: service}
}

// targetResponse はターゲットのAPIレスポンス。
type targetResponse struct {
	ID            string     `json:"id"`
	CaseID        string     `json:"case_id"`
	URL           string     `json:"url"`
	Domain        string     `json:"domain"`
	Status        string     `json:"status"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
}

func toTargetResponse(t *model.Target) targetResponse {
	return targetResponse{
		ID:            t.ID,
		CaseID:        t.CaseID,
		URL:           t.URL,
		Domain:        t.Domain,
		Status:        string(t.Status),
		LastCheckedAt: t.LastCheckedAt,
	}
}

// addTargetsRequest はターゲット一括作成リクエスト。
type addTargetsRequest struct {
	URLs []string `json:"urls"`
}

// ListTargets は所有者スコープで案件配下のターゲット一覧を返す。
// 親案件が未存在または他人所有の場合は404となる。
// GET /api/cases/{id}/targets
func (h *TargetHandler) ListTargets(w http.ResponseWriter, r *http.Request) {
	clientID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	caseID := chi.URLParam(r, "id")
	targets, err := h.service.ListTargets(r.Context(), caseID, clientID)
	if err != nil {
		slog.Error("failed to list targets", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if targets == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewCaseNotFoundError(caseID))
		return
	}

	resp := make([]targetResponse, 0, len(targets))
	for _, t := range targets {
		resp = append(resp, toTargetResponse(t))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// AddTargets は所有者スコープで案件配下にターゲットを一括作成する。
// POST /api/cases/{id}/targets
func (h *TargetHandler) AddTargets(w http.ResponseWriter, r *http.Request) {
	clientID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req addTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	caseID := chi.URLParam(r, "id")
	targets, err := h.service.AddTargets(r.Context(), caseID, clientID, req.URLs)
	if err != nil {
		writeServiceError(w, err, "failed to add targets")
		return
	}
	if targets == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewCaseNotFoundError(caseID))
		return
	}

	resp := make([]targetResponse, 0, len(targets))
	for _, t := range targets {
		resp = append(resp, toTargetResponse(t))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}
