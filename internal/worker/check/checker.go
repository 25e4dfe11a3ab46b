package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/contentguard/internal/model"
	"github.com/hitoshi/contentguard/internal/repository"
)

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// CheckMetrics はチェック結果のメトリクス記録インターフェース。
type CheckMetrics interface {
	RecordCheckResult(result string)
	RecordCheckLatency(duration time.Duration)
}

// Checker は個別ターゲットの到達性チェックを行う。
// 申請済み（filed）のターゲットURLへHTTPリクエストを送り、
// コンテンツが既に削除されたか（404/410）を判定する。
type Checker struct {
	targetRepo  repository.TargetRepository
	ssrfGuard   SSRFValidator
	metrics     CheckMetrics
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewChecker はCheckerの新しいインスタンスを生成する。metricsはnilを許容する。
func NewChecker(
	targetRepo repository.TargetRepository,
	ssrfGuard SSRFValidator,
	metrics CheckMetrics,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
) *Checker {
	return &Checker{
		targetRepo:  targetRepo,
		ssrfGuard:   ssrfGuard,
		metrics:     metrics,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// Check はターゲットの到達性をチェックし、結果に応じてステータスを更新する。
// ステータス遷移:
//   - 404/410: コンテンツ削除済みとみなしremovedへ
//   - SSRF検証失敗・トランスポートエラー: failedへ
//   - それ以外のステータスコード: filedのまま（まだ掲載されている）
//
// いずれの場合もlast_checked_atを現在時刻で更新する。
func (c *Checker) Check(ctx context.Context, target *model.Target) error {
	start := time.Now()

	// SSRF検証。クライアントが内部ネットワークを指すURLを登録していても
	// ここでブロックされる
	if err := c.ssrfGuard.ValidateURL(target.URL); err != nil {
		c.logger.Warn("target URL failed SSRF validation",
			slog.String("target_id", target.ID),
			slog.String("url", target.URL),
			slog.String("error", err.Error()),
		)
		return c.recordResult(ctx, target, model.TargetStatusFailed, "failed", start)
	}

	client := c.ssrfGuard.NewSafeClient(c.timeout, c.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentGuard/1.0 Takedown Verifier")

	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warn("target check request failed",
			slog.String("target_id", target.ID),
			slog.String("url", target.URL),
			slog.String("error", err.Error()),
		)
		return c.recordResult(ctx, target, model.TargetStatusFailed, "failed", start)
	}
	defer resp.Body.Close()

	// 404/410はコンテンツ削除済みの確証とみなす
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		c.logger.Info("target content removed",
			slog.String("target_id", target.ID),
			slog.String("url", target.URL),
			slog.Int("http_status", resp.StatusCode),
		)
		return c.recordResult(ctx, target, model.TargetStatusRemoved, "removed", start)
	}

	// それ以外はコンテンツがまだ掲載されているとみなしステータスを維持する。
	// ページタイトルは申請書類の照合用にログへ残す
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	title := ""
	if readErr == nil {
		title = extractTitle(body)
	}

	c.logger.Info("target content still present",
		slog.String("target_id", target.ID),
		slog.String("url", target.URL),
		slog.Int("http_status", resp.StatusCode),
		slog.String("page_title", title),
	)
	return c.recordResult(ctx, target, target.Status, "unchanged", start)
}

// recordResult はチェック結果を永続化し、メトリクスを記録する。
func (c *Checker) recordResult(ctx context.Context, target *model.Target, status model.TargetStatus, result string, start time.Time) error {
	if c.metrics != nil {
		c.metrics.RecordCheckResult(result)
		c.metrics.RecordCheckLatency(time.Since(start))
	}

	if err := c.targetRepo.UpdateCheckResult(ctx, target.ID, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update check result: %w", err)
	}
	return nil
}

// extractTitle はHTMLドキュメントからtitle要素のテキストを抽出する。
// パース不能・title無しの場合は空文字列を返す。
func extractTitle(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return title
}
