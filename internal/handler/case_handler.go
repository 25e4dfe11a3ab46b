package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contentguard/internal/middleware"
	"github.com/hitoshi/contentguard/internal/model"
	"github.com/hitoshi/contentguard/internal/takedown"
)

// CaseServiceInterface は案件ハンドラーが必要とするサービスインターフェース。
type CaseServiceInterface interface {
	CreateCase(ctx context.Context, clientID string, input takedown.CreateCaseInput) (*model.Case, error)
	ListCases(ctx context.Context, clientID string) ([]*model.Case, error)
	GetCase(ctx context.Context, id, clientID string) (*model.Case, error)
	UpdateCaseStatus(ctx context.Context, id, clientID, status string) (*model.Case, error)
}

// CaseHandler は案件管理のHTTPハンドラー。
type CaseHandler struct {
	service CaseServiceInterface
}

// NewCaseHandler はCaseHandlerを生成する。
func NewCaseHandler(service CaseServiceInterface) *CaseHandler {
	return &CaseHandler{service: service}
}

// caseResponse は案件のAPIレスポンス。
type caseResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCaseResponse(c *model.Case) caseResponse {
	return caseResponse{
		ID:          c.ID,
		ClientID:    c.ClientID,
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		Priority:    string(c.Priority),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// createCaseRequest は案件作成リクエスト。
type createCaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// updateCaseRequest は案件ステータス更新リクエスト。
type updateCaseRequest struct {
	Status string `json:"status"`
}

// ListCases は呼び出し元クライアントの案件一覧を返す。
// GET /api/cases
func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	clientID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	cases, err := h.service.ListCases(r.Context(), clientID)
	if err != nil {
		slog.Error("failed to list cases", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	resp := make([]caseResponse, 0, len(cases))
	for _, c := range cases {
		resp = append(resp, toCaseResponse(c))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateCase は呼び出し元クライアントを所有者とする案件を作成する。
// POST /api/cases
func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	clientID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	c, err := h.service.CreateCase(r.Context(), clientID, takedown.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create case")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toCaseResponse(c))
}

// GetCase は所有者スコープで案件を1件返す。
// 未存在と他人所有はどちらも404となる。
// GET /api/cases/{id}
func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	clientID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	caseID := chi.URLParam(r, "id")
	c, err := h.service.GetCase(r.Context(), caseID, clientID)
	if err != nil {
		slog.Error("failed to get case", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if c == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewCaseNotFoundError(caseID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toCaseResponse(c))
}

// UpdateCase は所有者スコープで案件ステータスを更新する。
// PATCH /api/cases/{id}
func (h *CaseHandler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	clientID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req updateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	caseID := chi.URLParam(r, "id")
	c, err := h.service.UpdateCaseStatus(r.Context(), caseID, clientID, req.Status)
	if err != nil {
		writeServiceError(w, err, "failed to update case")
		return
	}
	if c == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewCaseNotFoundError(caseID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toCaseResponse(c))
}

// writeServiceError はサービス層のエラーをHTTPレスポンスへ変換する。
// バリデーション起因のAPIErrorは400、それ以外は詳細を隠して500を返す。
func writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	slog.Error(logMsg, slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
