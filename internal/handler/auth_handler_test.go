package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/contentguard/internal/auth"
	"github.com/hitoshi/contentguard/internal/middleware"
	"github.com/hitoshi/contentguard/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	handOffFn func(ctx context.Context, input auth.HandOffInput) (*model.User, error)
	logoutFn  func(ctx context.Context, token string) error
}

func (m *mockAuthService) HandOff(ctx context.Context, input auth.HandOffInput) (*model.User, error) {
	if m.handOffFn != nil {
		return m.handOffFn(ctx, input)
	}
	return &model.User{ID: input.ID, Email: input.Email, Name: input.Name}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieDomain:  "",
		SessionMaxAge: 7 * 24 * 60 * 60,
	}
}

func findSessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

// --- CreateSession のテスト ---

func TestCreateSession_SetsSessionCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	body := `{"id":"user-1","email":"client@example.com","name":"Client","session_token":"tok-abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateSession(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := findSessionCookie(t, resp)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "tok-abc" {
		t.Errorf("cookie value = %q, want tok-abc", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("cookie must be Secure")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %v, want None", cookie.SameSite)
	}
	if cookie.MaxAge != 7*24*60*60 {
		t.Errorf("MaxAge = %d, want 7 days in seconds", cookie.MaxAge)
	}

	var respBody struct {
		User    userResponse `json:"user"`
		Message string       `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if respBody.User.ID != "user-1" {
		t.Errorf("user.id = %q, want user-1", respBody.User.ID)
	}
	if respBody.Message != "Session created" {
		t.Errorf("message = %q, want Session created", respBody.Message)
	}
}

func TestCreateSession_MissingRequiredFields_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"email":"a@example.com","session_token":"tok"}`},
		{"missing email", `{"id":"user-1","session_token":"tok"}`},
		{"missing token", `{"id":"user-1","email":"a@example.com"}`},
		{"invalid json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.CreateSession(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestCreateSession_HandOffFailure_Returns500(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		handOffFn: func(ctx context.Context, input auth.HandOffInput) (*model.User, error) {
			return nil, context.DeadlineExceeded
		},
	}, testAuthConfig())

	body := `{"id":"user-1","email":"client@example.com","session_token":"tok-abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateSession(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	if findSessionCookie(t, resp) != nil {
		t.Error("session cookie must not be set on failure")
	}
}

// --- Logout のテスト ---

func TestLogout_ClearsCookieAndInvalidatesSession(t *testing.T) {
	var loggedOutToken string
	h := NewAuthHandler(&mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			loggedOutToken = token
			return nil
		},
	}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "tok-abc"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if loggedOutToken != "tok-abc" {
		t.Errorf("logged out token = %q, want tok-abc", loggedOutToken)
	}

	cookie := findSessionCookie(t, resp)
	if cookie == nil {
		t.Fatal("clearing cookie not set")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestLogout_WithoutSession_IsIdempotent(t *testing.T) {
	logoutCalled := false
	h := NewAuthHandler(&mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			logoutCalled = true
			return nil
		},
	}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if logoutCalled {
		t.Error("logout service should not be called without credentials")
	}
}

func TestLogout_AcceptsBearerHeader(t *testing.T) {
	var loggedOutToken string
	h := NewAuthHandler(&mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			loggedOutToken = token
			return nil
		},
	}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok-header")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if loggedOutToken != "tok-header" {
		t.Errorf("logged out token = %q, want tok-header", loggedOutToken)
	}
}

// --- Me のテスト ---

func TestMe_ReturnsAuthenticatedUser(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), &model.User{
		ID:    "user-1",
		Email: "client@example.com",
		Name:  "Client",
	}))
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "user-1" || body.Email != "client@example.com" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestMe_WithoutContext_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
