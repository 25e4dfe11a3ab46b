// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, case, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeCaseNotFound    = "CASE_NOT_FOUND"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
	ErrCodeInvalidPriority = "INVALID_PRIORITY"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeEmptyTargetList = "EMPTY_TARGET_LIST"
)

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewCaseNotFoundError は案件未検出エラーを生成する。
// 存在しない場合と他ユーザー所有の場合を区別しない（存在の漏洩防止）。
func NewCaseNotFoundError(caseID string) *APIError {
	return &APIError{
		Code:     ErrCodeCaseNotFound,
		Message:  fmt.Sprintf("指定された案件が見つかりません: %s", caseID),
		Category: "case",
		Action:   "案件IDを確認してください。",
	}
}

// NewInvalidStatusError は無効な案件ステータスエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには submitted、filed、in_review、removed、denied のいずれかを指定してください。",
	}
}

// NewInvalidPriorityError は無効な優先度エラーを生成する。
func NewInvalidPriorityError(priority string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPriority,
		Message:  fmt.Sprintf("無効な優先度です: %s", priority),
		Category: "validation",
		Action:   "優先度には normal、high、urgent のいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewEmptyTargetListError は空のターゲットリストエラーを生成する。
func NewEmptyTargetListError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyTargetList,
		Message:  "URLが1件も指定されていません。",
		Category: "validation",
		Action:   "削除対象のURLを1件以上指定してください。",
	}
}
