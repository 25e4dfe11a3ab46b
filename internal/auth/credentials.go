package auth

import (
	"net/http"
	"strings"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_token"

// bearerPrefix はAuthorizationヘッダーの固定プレフィックス。
const bearerPrefix = "Bearer "

// ExtractToken はリクエストからベアラートークンを抽出する。
// 優先順位はCookie → Authorizationヘッダーの順で固定。
// Cookieを設定できないクロスサイトのクライアントがヘッダー経由で
// 認証できるよう、両方が存在する場合はCookieが勝つ契約を維持する。
// どちらにも無い場合は空文字列を返す。副作用は無い。
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return header[len(bearerPrefix):]
	}

	return ""
}
