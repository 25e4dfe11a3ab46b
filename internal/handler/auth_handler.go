// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/contentguard/internal/auth"
	"github.com/hitoshi/contentguard/internal/middleware"
	"github.com/hitoshi/contentguard/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	HandOff(ctx context.Context, input auth.HandOffInput) (*model.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はセッション認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// sessionRequest は外部IdPからのハンドオフペイロード。
// session_tokenはIdPが発行済みの不透明文字列で、本システムは検証せず受け入れる。
type sessionRequest struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
	}
}

// CreateSession は外部IdPからのアイデンティティハンドオフを受け付け、
// セッションを作成してHTTP Only Cookieを設定する。
// POST /api/auth/session
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	if req.ID == "" || req.Email == "" || req.SessionToken == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("id, email, session_token are required"))
		return
	}

	user, err := h.service.HandOff(r.Context(), auth.HandOffInput{
		ID:           req.ID,
		Email:        req.Email,
		Name:         req.Name,
		Picture:      req.Picture,
		SessionToken: req.SessionToken,
	})
	if err != nil {
		slog.Error("session hand-off failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// クロスサイトのフロントエンドからCookieを送れるようSameSite=Noneで設定する。
	// SameSite=NoneはSecure必須。
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    req.SessionToken,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user":    toUserResponse(user),
		"message": "Session created",
	})
}

// Logout はセッションを破棄し、セッションCookieをクリアする。
// セッションが存在しない場合も成功扱い（冪等）。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractToken(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Logged out",
	})
}

// Me は現在のログインユーザー情報を返す。
// セッションミドルウェアの背後に配置され、未認証リクエストはここに到達しない。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}
