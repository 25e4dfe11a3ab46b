// Package model はドメインモデルを定義する。
package model

import "time"

// CaseStatus はテイクダウン案件の処理状態を表す。
type CaseStatus string

const (
	// CaseStatusSubmitted は提出直後の初期状態。
	CaseStatusSubmitted CaseStatus = "submitted"
	// CaseStatusFiled は削除申請を提出済みの状態。
	CaseStatusFiled CaseStatus = "filed"
	// CaseStatusInReview はホスティング側で審査中の状態。
	CaseStatusInReview CaseStatus = "in_review"
	// CaseStatusRemoved は対象コンテンツが削除された状態。
	CaseStatusRemoved CaseStatus = "removed"
	// CaseStatusDenied は申請が却下された状態。
	CaseStatusDenied CaseStatus = "denied"
)

// IsValidCaseStatus は文字列が定義済みの案件ステータスかどうかを判定する。
func IsValidCaseStatus(s string) bool {
	switch CaseStatus(s) {
	case CaseStatusSubmitted, CaseStatusFiled, CaseStatusInReview,
		CaseStatusRemoved, CaseStatusDenied:
		return true
	default:
		return false
	}
}

// Priority は案件の優先度を表す。
type Priority string

const (
	// PriorityNormal は通常優先度。
	PriorityNormal Priority = "normal"
	// PriorityHigh は高優先度。
	PriorityHigh Priority = "high"
	// PriorityUrgent は緊急優先度。
	PriorityUrgent Priority = "urgent"
)

// IsValidPriority は文字列が定義済みの優先度かどうかを判定する。
func IsValidPriority(s string) bool {
	switch Priority(s) {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Case はDMCA型テイクダウン案件を表す。
// ClientIDは所有者（User.ID）への外部キーで、作成後は変更されない。
// 案件はAPIを通して所有者にのみ可視・可変となる。
type Case struct {
	ID          string
	ClientID    string
	Title       string
	Description string
	Status      CaseStatus
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TargetStatus は削除対象URLの処理状態を表す。
type TargetStatus string

const (
	// TargetStatusPending は未処理の初期状態。
	TargetStatusPending TargetStatus = "pending"
	// TargetStatusFiled は削除申請済みの状態。
	TargetStatusFiled TargetStatus = "filed"
	// TargetStatusRemoved はコンテンツが削除された状態。
	TargetStatusRemoved TargetStatus = "removed"
	// TargetStatusFailed はチェックまたは申請が失敗した状態。
	TargetStatusFailed TargetStatus = "failed"
)

// Target は案件配下の削除対象URLを表す。
// 所有者フィールドは持たず、親CaseのClientIDを通して推移的に認可される。
type Target struct {
	ID            string
	CaseID        string
	URL           string
	Domain        string
	Status        TargetStatus
	LastCheckedAt *time.Time
}
