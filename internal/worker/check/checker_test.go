package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
)

// --- モック定義 ---

type mockTargetRepo struct {
	mu              sync.Mutex
	listDueFn       func(ctx context.Context, staleBefore time.Time, limit int) ([]*model.Target, error)
	updatedStatuses map[string]model.TargetStatus
	updatedTimes    map[string]time.Time
}

func newMockTargetRepo() *mockTargetRepo {
	return &mockTargetRepo{
		updatedStatuses: make(map[string]model.TargetStatus),
		updatedTimes:    make(map[string]time.Time),
	}
}

func (m *mockTargetRepo) CreateBatch(ctx context.Context, targets []*model.Target) error { return nil }

func (m *mockTargetRepo) ListByCase(ctx context.Context, caseID string) ([]*model.Target, error) {
	return nil, nil
}

func (m *mockTargetRepo) CountByStatus(ctx context.Context, status model.TargetStatus) (int, error) {
	return 0, nil
}

func (m *mockTargetRepo) ListDueForCheck(ctx context.Context, staleBefore time.Time, limit int) ([]*model.Target, error) {
	if m.listDueFn != nil {
		return m.listDueFn(ctx, staleBefore, limit)
	}
	return nil, nil
}

func (m *mockTargetRepo) UpdateCheckResult(ctx context.Context, id string, status model.TargetStatus, checkedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatedStatuses[id] = status
	m.updatedTimes[id] = checkedAt
	return nil
}

func (m *mockTargetRepo) statusOf(id string) (model.TargetStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.updatedStatuses[id]
	return status, ok
}

// stubGuard はテスト用のSSRFValidator。
// httptestサーバー（ループバック）へ接続できるよう素のhttp.Clientを返す。
type stubGuard struct {
	validateErr error
}

func (s *stubGuard) ValidateURL(rawURL string) error { return s.validateErr }

func (s *stubGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
}

func (r *recordingMetrics) RecordCheckResult(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recordingMetrics) RecordCheckLatency(duration time.Duration) {}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestChecker(repo *mockTargetRepo, guard SSRFValidator, metrics CheckMetrics) *Checker {
	return NewChecker(repo, guard, metrics, testLogger(), 5*time.Second, 1*1024*1024)
}

// --- Check のテスト ---

// 404応答でターゲットがremovedへ遷移することを検証
func TestCheck_404MarksRemoved(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	repo := newMockTargetRepo()
	metrics := &recordingMetrics{}
	checker := newTestChecker(repo, &stubGuard{}, metrics)

	target := &model.Target{ID: "t-1", URL: ts.URL, Status: model.TargetStatusFiled}
	if err := checker.Check(context.Background(), target); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	if status, ok := repo.statusOf("t-1"); !ok || status != model.TargetStatusRemoved {
		t.Errorf("status = %v (updated=%v), want removed", status, ok)
	}
	if len(metrics.results) != 1 || metrics.results[0] != "removed" {
		t.Errorf("metrics results = %v, want [removed]", metrics.results)
	}
}

// 410応答でターゲットがremovedへ遷移することを検証
func TestCheck_410MarksRemoved(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer ts.Close()

	repo := newMockTargetRepo()
	checker := newTestChecker(repo, &stubGuard{}, nil)

	target := &model.Target{ID: "t-1", URL: ts.URL, Status: model.TargetStatusFiled}
	if err := checker.Check(context.Background(), target); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	if status, _ := repo.statusOf("t-1"); status != model.TargetStatusRemoved {
		t.Errorf("status = %v, want removed", status)
	}
}

// 200応答でステータスが維持され、last_checked_atのみ更新されることを検証
func TestCheck_200KeepsStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>Pirated Movie</title></head><body></body></html>")
	}))
	defer ts.Close()

	repo := newMockTargetRepo()
	metrics := &recordingMetrics{}
	checker := newTestChecker(repo, &stubGuard{}, metrics)

	target := &model.Target{ID: "t-1", URL: ts.URL, Status: model.TargetStatusFiled}
	if err := checker.Check(context.Background(), target); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	if status, _ := repo.statusOf("t-1"); status != model.TargetStatusFiled {
		t.Errorf("status = %v, want filed (unchanged)", status)
	}
	repo.mu.Lock()
	checkedAt := repo.updatedTimes["t-1"]
	repo.mu.Unlock()
	if checkedAt.IsZero() {
		t.Error("last_checked_at not stamped")
	}
	if len(metrics.results) != 1 || metrics.results[0] != "unchanged" {
		t.Errorf("metrics results = %v, want [unchanged]", metrics.results)
	}
}

// トランスポートエラーでターゲットがfailedへ遷移することを検証
func TestCheck_TransportErrorMarksFailed(t *testing.T) {
	// 即座にクローズしたサーバーのURLで接続エラーを起こす
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	repo := newMockTargetRepo()
	checker := newTestChecker(repo, &stubGuard{}, nil)

	target := &model.Target{ID: "t-1", URL: url, Status: model.TargetStatusFiled}
	if err := checker.Check(context.Background(), target); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	if status, _ := repo.statusOf("t-1"); status != model.TargetStatusFailed {
		t.Errorf("status = %v, want failed", status)
	}
}

// SSRF検証に失敗したターゲットがHTTPリクエストなしでfailedへ遷移することを検証
func TestCheck_SSRFValidationFailureMarksFailed(t *testing.T) {
	requested := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer ts.Close()

	repo := newMockTargetRepo()
	checker := newTestChecker(repo, &stubGuard{validateErr: fmt.Errorf("blocked IP address")}, nil)

	target := &model.Target{ID: "t-1", URL: ts.URL, Status: model.TargetStatusFiled}
	if err := checker.Check(context.Background(), target); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	if status, _ := repo.statusOf("t-1"); status != model.TargetStatusFailed {
		t.Errorf("status = %v, want failed", status)
	}
	if requested {
		t.Error("HTTP request must not be sent when SSRF validation fails")
	}
}

// --- extractTitle のテスト ---

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"simple", "<html><head><title>Hello</title></head></html>", "Hello"},
		{"whitespace", "<html><head><title>  Padded  </title></head></html>", "Padded"},
		{"no title", "<html><head></head><body>x</body></html>", ""},
		{"not html", "plain text", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle([]byte(tt.body)); got != tt.want {
				t.Errorf("extractTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
