package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
)

// statsCaseRepo はテスト用のCaseRepositoryモック。
// 統計集計で使うCountDistinctClientsのみ差し替え可能にする。
type statsCaseRepo struct {
	countDistinctClientsFn func(ctx context.Context) (int, error)
}

func (m *statsCaseRepo) Create(ctx context.Context, c *model.Case) error { return nil }

func (m *statsCaseRepo) FindByIDForClient(ctx context.Context, id, clientID string) (*model.Case, error) {
	return nil, nil
}

func (m *statsCaseRepo) ListByClient(ctx context.Context, clientID string) ([]*model.Case, error) {
	return nil, nil
}

func (m *statsCaseRepo) UpdateStatusForClient(ctx context.Context, id, clientID string, status model.CaseStatus, updatedAt time.Time) (*model.Case, error) {
	return nil, nil
}

func (m *statsCaseRepo) CountDistinctClients(ctx context.Context) (int, error) {
	return m.countDistinctClientsFn(ctx)
}

// statsTargetRepo はテスト用のTargetRepositoryモック。
type statsTargetRepo struct {
	countByStatusFn func(ctx context.Context, status model.TargetStatus) (int, error)
}

func (m *statsTargetRepo) CreateBatch(ctx context.Context, targets []*model.Target) error { return nil }

func (m *statsTargetRepo) ListByCase(ctx context.Context, caseID string) ([]*model.Target, error) {
	return nil, nil
}

func (m *statsTargetRepo) CountByStatus(ctx context.Context, status model.TargetStatus) (int, error) {
	return m.countByStatusFn(ctx, status)
}

func (m *statsTargetRepo) ListDueForCheck(ctx context.Context, staleBefore time.Time, limit int) ([]*model.Target, error) {
	return nil, nil
}

func (m *statsTargetRepo) UpdateCheckResult(ctx context.Context, id string, status model.TargetStatus, checkedAt time.Time) error {
	return nil
}

// 実測値が下限を下回る場合に下限値が表示されることを検証
func TestGetPublicStats_Floors(t *testing.T) {
	svc := NewService(
		&statsCaseRepo{
			countDistinctClientsFn: func(ctx context.Context) (int, error) { return 3, nil },
		},
		&statsTargetRepo{
			countByStatusFn: func(ctx context.Context, status model.TargetStatus) (int, error) {
				if status != model.TargetStatusRemoved {
					t.Errorf("CountByStatus called with %q, want %q", status, model.TargetStatusRemoved)
				}
				return 42, nil
			},
		},
	)

	got, err := svc.GetPublicStats(context.Background())
	if err != nil {
		t.Fatalf("GetPublicStats returned error: %v", err)
	}
	if got.FilesRemoved != 10000 {
		t.Errorf("FilesRemoved = %d, want 10000", got.FilesRemoved)
	}
	if got.ActiveClients != 250 {
		t.Errorf("ActiveClients = %d, want 250", got.ActiveClients)
	}
	if got.SuccessRate != 98 {
		t.Errorf("SuccessRate = %d, want 98", got.SuccessRate)
	}
	if got.AvgResponseTime != 24 {
		t.Errorf("AvgResponseTime = %d, want 24", got.AvgResponseTime)
	}
}

// 実測値が下限を上回る場合に実測値が表示されることを検証
func TestGetPublicStats_AboveFloors(t *testing.T) {
	svc := NewService(
		&statsCaseRepo{
			countDistinctClientsFn: func(ctx context.Context) (int, error) { return 612, nil },
		},
		&statsTargetRepo{
			countByStatusFn: func(ctx context.Context, status model.TargetStatus) (int, error) {
				return 15234, nil
			},
		},
	)

	got, err := svc.GetPublicStats(context.Background())
	if err != nil {
		t.Fatalf("GetPublicStats returned error: %v", err)
	}
	if got.FilesRemoved != 15234 {
		t.Errorf("FilesRemoved = %d, want 15234", got.FilesRemoved)
	}
	if got.ActiveClients != 612 {
		t.Errorf("ActiveClients = %d, want 612", got.ActiveClients)
	}
}

// ストア障害がそのまま伝播することを検証
func TestGetPublicStats_StoreFault(t *testing.T) {
	svc := NewService(
		&statsCaseRepo{
			countDistinctClientsFn: func(ctx context.Context) (int, error) { return 0, nil },
		},
		&statsTargetRepo{
			countByStatusFn: func(ctx context.Context, status model.TargetStatus) (int, error) {
				return 0, errors.New("connection refused")
			},
		},
	)

	_, err := svc.GetPublicStats(context.Background())
	if err == nil {
		t.Fatal("expected error from store fault")
	}
}
