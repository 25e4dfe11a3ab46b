// Package takedown はテイクダウン案件とターゲットのビジネスロジックを提供する。
//
// すべての読み取り・更新は所有者スコープで行い、リポジトリ層の
// 所有者付きクエリを通して「未存在」と「他人所有」を同一の
// (nil, nil) センチネルとして扱う。呼び出し側はこの2つを区別できない。
package takedown

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/contentguard/internal/model"
	"github.com/hitoshi/contentguard/internal/repository"
)

// TextSanitizer はユーザー入力テキストのサニタイズインターフェース。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// Service は案件とターゲットに関するビジネスロジックを提供する。
type Service struct {
	caseRepo   repository.CaseRepository
	targetRepo repository.TargetRepository
	sanitizer  TextSanitizer
}

// NewService はServiceを生成する。
func NewService(
	caseRepo repository.CaseRepository,
	targetRepo repository.TargetRepository,
	sanitizer TextSanitizer,
) *Service {
	return &Service{
		caseRepo:   caseRepo,
		targetRepo: targetRepo,
		sanitizer:  sanitizer,
	}
}

// CreateCaseInput は案件作成の入力。
type CreateCaseInput struct {
	Title       string
	Description string
	Priority    string // 空の場合はnormal
}

// CreateCase は呼び出し元クライアントを所有者とする案件を作成する。
// タイトル・説明文はHTMLを除去したプレーンテキストとして保存される。
// 初期ステータスはsubmitted、優先度未指定時はnormal。
func (s *Service) CreateCase(ctx context.Context, clientID string, input CreateCaseInput) (*model.Case, error) {
	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewInvalidRequestError("title")
	}

	priority := model.PriorityNormal
	if input.Priority != "" {
		if !model.IsValidPriority(input.Priority) {
			return nil, model.NewInvalidPriorityError(input.Priority)
		}
		priority = model.Priority(input.Priority)
	}

	now := time.Now().UTC()
	c := &model.Case{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Title:       title,
		Description: s.sanitizer.Sanitize(input.Description),
		Status:      model.CaseStatusSubmitted,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	slog.Info("case created",
		slog.String("case_id", c.ID),
		slog.String("client_id", clientID),
		slog.String("priority", string(priority)),
	)
	return c, nil
}

// ListCases は呼び出し元クライアントの案件一覧を作成日時降順で返す。
// 0件の場合は空スライスを返す。
func (s *Service) ListCases(ctx context.Context, clientID string) ([]*model.Case, error) {
	cases, err := s.caseRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// GetCase は所有者スコープで案件を1件取得する。
// 未存在と他人所有はどちらも (nil, nil) となる。
func (s *Service) GetCase(ctx context.Context, id, clientID string) (*model.Case, error) {
	c, err := s.caseRepo.FindByIDForClient(ctx, id, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find case: %w", err)
	}
	return c, nil
}

// UpdateCaseStatus は所有者スコープで案件ステータスを更新し、更新後の案件を返す。
// 不正なステータス値は更新前に拒否する。
// 所有者スコープに一致する案件が無い場合は (nil, nil) を返す。
func (s *Service) UpdateCaseStatus(ctx context.Context, id, clientID, status string) (*model.Case, error) {
	if !model.IsValidCaseStatus(status) {
		return nil, model.NewInvalidStatusError(status)
	}

	c, err := s.caseRepo.UpdateStatusForClient(ctx, id, clientID, model.CaseStatus(status), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update case status: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	slog.Info("case status updated",
		slog.String("case_id", c.ID),
		slog.String("status", status),
	)
	return c, nil
}

// ListTargets は所有者スコープで案件配下のターゲット一覧を返す。
// 親案件が所有者スコープに一致しない場合は (nil, nil) を返す。
// ターゲット自体は所有者フィールドを持たないため、必ず親案件の
// 解決を先に行う（推移的認可）。
func (s *Service) ListTargets(ctx context.Context, caseID, clientID string) ([]*model.Target, error) {
	c, err := s.caseRepo.FindByIDForClient(ctx, caseID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find case: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	targets, err := s.targetRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	return targets, nil
}

// AddTargets は所有者スコープで案件配下にターゲットを一括作成する。
// 親案件が所有者スコープに一致しない場合は (nil, nil) を返す。
// URL一覧が空の場合はバリデーションエラーを返す。
// 各URLのドメインはベストエフォートで導出され、導出できないURLも
// バッチ全体を失敗させずドメイン"unknown"として登録される。
func (s *Service) AddTargets(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error) {
	if len(urls) == 0 {
		return nil, model.NewEmptyTargetListError()
	}

	c, err := s.caseRepo.FindByIDForClient(ctx, caseID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find case: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	targets := make([]*model.Target, 0, len(urls))
	for _, rawURL := range urls {
		targets = append(targets, &model.Target{
			ID:     uuid.NewString(),
			CaseID: caseID,
			URL:    rawURL,
			Domain: deriveDomain(rawURL),
			Status: model.TargetStatusPending,
		})
	}

	if err := s.targetRepo.CreateBatch(ctx, targets); err != nil {
		return nil, fmt.Errorf("failed to create targets: %w", err)
	}

	slog.Info("targets added",
		slog.String("case_id", caseID),
		slog.Int("count", len(targets)),
	)
	return targets, nil
}

// deriveDomain はURLのネットワークロケーション部からドメインを導出する。
// パース不能またはホストが空のURLは"unknown"を返す。エラーにはしない。
func deriveDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		slog.Warn("domain derivation failed, recording as unknown",
			slog.String("url", rawURL),
		)
		return "unknown"
	}
	return parsed.Hostname()
}
