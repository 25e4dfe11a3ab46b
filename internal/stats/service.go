// Package stats は公開統計の集計を提供する。
package stats

import (
	"context"
	"fmt"

	"github.com/hitoshi/contentguard/internal/model"
	"github.com/hitoshi/contentguard/internal/repository"
)

// 公開統計の下限値と固定値。
// マーケティング上の表示要件で、実測値が下限を下回る間は下限値を表示する。
const (
	minFilesRemoved      = 10000
	minActiveClients     = 250
	fixedSuccessRate     = 98
	fixedAvgResponseTime = 24
)

// PublicStats は認証不要の公開統計。
type PublicStats struct {
	FilesRemoved    int // removedステータスのターゲット数（下限10000）
	ActiveClients   int // 案件を1件以上持つクライアント数（下限250）
	SuccessRate     int // 固定値
	AvgResponseTime int // 時間単位の固定値
}

// Service は公開統計の集計ロジックを提供する。
type Service struct {
	caseRepo   repository.CaseRepository
	targetRepo repository.TargetRepository
}

// NewService はServiceを生成する。
func NewService(caseRepo repository.CaseRepository, targetRepo repository.TargetRepository) *Service {
	return &Service{
		caseRepo:   caseRepo,
		targetRepo: targetRepo,
	}
}

// GetPublicStats は公開統計を集計して返す。
func (s *Service) GetPublicStats(ctx context.Context) (*PublicStats, error) {
	removed, err := s.targetRepo.CountByStatus(ctx, model.TargetStatusRemoved)
	if err != nil {
		return nil, fmt.Errorf("failed to count removed targets: %w", err)
	}

	clients, err := s.caseRepo.CountDistinctClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count distinct clients: %w", err)
	}

	return &PublicStats{
		FilesRemoved:    max(removed, minFilesRemoved),
		ActiveClients:   max(clients, minActiveClients),
		SuccessRate:     fixedSuccessRate,
		AvgResponseTime: fixedAvgResponseTime,
	}, nil
}
