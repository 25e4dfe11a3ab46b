package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/contentguard/internal/middleware"
	"github.com/hitoshi/contentguard/internal/stats"
)

// StatsServiceInterface は統計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	GetPublicStats(ctx context.Context) (*stats.PublicStats, error)
}

// StatsHandler は公開統計のHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: service}
}

// publicStatsResponse は公開統計のAPIレスポンス。
// フィールド名はフロントエンドの表示コンポーネントに合わせたキャメルケース。
type publicStatsResponse struct {
	FilesRemoved    int `json:"filesRemoved"`
	ActiveClients   int `json:"activeClients"`
	SuccessRate     int `json:"successRate"`
	AvgResponseTime int `json:"avgResponseTime"`
}

// GetPublicStats は公開統計を返す。認証不要。
// GET /api/stats/public
func (h *StatsHandler) GetPublicStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetPublicStats(r.Context())
	if err != nil {
		slog.Error("failed to get public stats", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(publicStatsResponse{
		FilesRemoved:    s.FilesRemoved,
		ActiveClients:   s.ActiveClients,
		SuccessRate:     s.SuccessRate,
		AvgResponseTime: s.AvgResponseTime,
	})
}
