package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/contentguard/internal/middleware"
	"github.com/hitoshi/contentguard/internal/model"
)

// --- モック定義 ---

type mockTargetService struct {
	listTargetsFn func(ctx context.Context, caseID, clientID string) ([]*model.Target, error)
	addTargetsFn  func(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error)
}

func (m *mockTargetService) ListTargets(ctx context.Context, caseID, clientID string) ([]*model.Target, error) {
	return m.listTargetsFn(ctx, caseID, clientID)
}

func (m *mockTargetService) AddTargets(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error) {
	return m.addTargetsFn(ctx, caseID, clientID, urls)
}

// --- ListTargets のテスト ---

func TestListTargets_ReturnsTargets(t *testing.T) {
	h := NewTargetHandler(&mockTargetService{
		listTargetsFn: func(ctx context.Context, caseID, clientID string) ([]*model.Target, error) {
			return []*model.Target{
				{ID: "t-1", CaseID: caseID, URL: "https://example.com/x", Domain: "example.com", Status: model.TargetStatusPending},
			}, nil
		},
	})

	w := httptest.NewRecorder()
	h.ListTargets(w, authedJSONRequest(http.MethodGet, "/api/cases/case-1/targets", "client-1", "case-1", ""))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body []targetResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body) != 1 || body[0].Domain != "example.com" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body[0].LastCheckedAt != nil {
		t.Error("last_checked_at should be null for unchecked target")
	}
}

func TestListTargets_ParentNotOwned_Returns404(t *testing.T) {
	h := NewTargetHandler(&mockTargetService{
		listTargetsFn: func(ctx context.Context, caseID, clientID string) ([]*model.Target, error) {
			// 親案件が所有者スコープに一致しない
			return nil, nil
		},
	})

	w := httptest.NewRecorder()
	h.ListTargets(w, authedJSONRequest(http.MethodGet, "/api/cases/case-1/targets", "intruder", "case-1", ""))

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var errBody middleware.ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if errBody.Code != model.ErrCodeCaseNotFound {
		t.Errorf("code = %q, want %q", errBody.Code, model.ErrCodeCaseNotFound)
	}
}

// --- AddTargets のテスト ---

func TestAddTargets_BestEffortDomains(t *testing.T) {
	h := NewTargetHandler(&mockTargetService{
		addTargetsFn: func(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error) {
			if len(urls) != 2 {
				t.Fatalf("urls = %v, want 2 entries", urls)
			}
			return []*model.Target{
				{ID: "t-1", CaseID: caseID, URL: urls[0], Domain: "example.com", Status: model.TargetStatusPending},
				{ID: "t-2", CaseID: caseID, URL: urls[1], Domain: "unknown", Status: model.TargetStatusPending},
			}, nil
		},
	})

	body := `{"urls":["https://example.com/x","not a url"]}`
	w := httptest.NewRecorder()
	h.AddTargets(w, authedJSONRequest(http.MethodPost, "/api/cases/case-1/targets", "client-1", "case-1", body))

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var targets []targetResponse
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Domain != "example.com" || targets[1].Domain != "unknown" {
		t.Errorf("domains = %q, %q; want example.com, unknown", targets[0].Domain, targets[1].Domain)
	}
	for i, target := range targets {
		if target.CaseID != "case-1" {
			t.Errorf("targets[%d].case_id = %q, want case-1", i, target.CaseID)
		}
		if target.Status != "pending" {
			t.Errorf("targets[%d].status = %q, want pending", i, target.Status)
		}
	}
}

func TestAddTargets_EmptyList_Returns400(t *testing.T) {
	h := NewTargetHandler(&mockTargetService{
		addTargetsFn: func(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error) {
			return nil, model.NewEmptyTargetListError()
		},
	})

	w := httptest.NewRecorder()
	h.AddTargets(w, authedJSONRequest(http.MethodPost, "/api/cases/case-1/targets", "client-1", "case-1", `{"urls":[]}`))

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var errBody middleware.ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if errBody.Code != model.ErrCodeEmptyTargetList {
		t.Errorf("code = %q, want %q", errBody.Code, model.ErrCodeEmptyTargetList)
	}
}

func TestAddTargets_ParentNotOwned_Returns404(t *testing.T) {
	h := NewTargetHandler(&mockTargetService{
		addTargetsFn: func(ctx context.Context, caseID, clientID string, urls []string) ([]*model.Target, error) {
			return nil, nil
		},
	})

	body := `{"urls":["https://example.com/x"]}`
	w := httptest.NewRecorder()
	h.AddTargets(w, authedJSONRequest(http.MethodPost, "/api/cases/case-1/targets", "intruder", "case-1", body))

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
