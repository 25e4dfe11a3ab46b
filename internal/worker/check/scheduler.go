// Package check は申請済みターゲットの到達性チェック処理を提供する。
// スケジューラとチェッカーを含む。
package check

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
	"github.com/hitoshi/contentguard/internal/repository"
)

// TargetCheckerService はターゲットチェックの実行インターフェース。
type TargetCheckerService interface {
	// Check は指定ターゲットの到達性をチェックし、結果に応じてステータスを更新する。
	Check(ctx context.Context, target *model.Target) error
}

// checkBatchLimit は1サイクルで取得するターゲット数の上限。
const checkBatchLimit = 100

// Scheduler はターゲットチェックのスケジューリングと並列制御を行う。
// 定期ティッカーでチェック対象ターゲットを取得し、
// semaphoreパターンで最大並列数を制御しながらチェックを実行する。
type Scheduler struct {
	targetRepo     repository.TargetRepository
	checker        TargetCheckerService
	logger         *slog.Logger
	recheckAfter   time.Duration
	maxConcurrency int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値10を使用する。
func NewScheduler(
	targetRepo repository.TargetRepository,
	checker TargetCheckerService,
	logger *slog.Logger,
	recheckAfter time.Duration,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Scheduler{
		targetRepo:     targetRepo,
		checker:        checker,
		logger:         logger,
		recheckAfter:   recheckAfter,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("check scheduler started",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("check cycle failed",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("check scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("check cycle failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce はチェック対象ターゲットを1回取得し、並列でチェックを実行する。
// semaphoreパターンで最大並列数を制御する。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	// チェック対象ターゲットを取得（FOR UPDATE SKIP LOCKED）
	staleBefore := time.Now().UTC().Add(-s.recheckAfter)
	targets, err := s.targetRepo.ListDueForCheck(ctx, staleBefore, checkBatchLimit)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		s.logger.Info("no targets due for check")
		return nil
	}

	s.logger.Info("check cycle started",
		slog.Int("target_count", len(targets)),
	)

	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, target := range targets {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(t *model.Target) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			if err := s.checker.Check(ctx, t); err != nil {
				s.logger.Error("target check failed",
					slog.String("target_id", t.ID),
					slog.String("url", t.URL),
					slog.String("error", err.Error()),
				)
			}
		}(target)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("check cycle completed",
		slog.Int("target_count", len(targets)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
