// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	// 同一ユーザーの既存セッションとの重複排除は行わない（複数同時セッションを許容）。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンのセッションを取得する。見つからない場合はnilを返す。
	// 期限切れ判定は呼び出し側（auth.Service）の責務で、期限切れの行もそのまま返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// DeleteByToken は指定トークンのセッションを削除する。
	// 冪等: 存在しないトークンの削除はエラーにならない。
	DeleteByToken(ctx context.Context, token string) error
}

// CaseRepository は案件データの永続化インターフェース。
// 読み取り・更新はすべて所有者スコープのクエリで行い、
// 「存在しない」と「他人の所有」を区別できない形で結果を返す。
type CaseRepository interface {
	// Create は案件を作成する。
	Create(ctx context.Context, c *model.Case) error

	// FindByIDForClient はIDと所有者の両方でスコープした案件を取得する。
	// 一致しない場合（未存在または他人所有）はnilを返す。
	FindByIDForClient(ctx context.Context, id, clientID string) (*model.Case, error)

	// ListByClient は所有者の案件一覧を作成日時降順で返す。0件は空スライス。
	ListByClient(ctx context.Context, clientID string) ([]*model.Case, error)

	// UpdateStatusForClient は所有者スコープで案件ステータスを更新し、
	// 更新後の案件を返す。一致しない場合はnilを返す。
	UpdateStatusForClient(ctx context.Context, id, clientID string, status model.CaseStatus, updatedAt time.Time) (*model.Case, error)

	// CountDistinctClients は1件以上の案件を持つクライアント数を返す。
	CountDistinctClients(ctx context.Context) (int, error)
}

// TargetRepository はターゲットデータの永続化インターフェース。
// 呼び出し側は親案件を所有者スコープで解決してからこれらの操作に進むこと。
type TargetRepository interface {
	// CreateBatch はターゲットを一括作成する。空スライスは何もしない。
	CreateBatch(ctx context.Context, targets []*model.Target) error

	// ListByCase は案件配下のターゲット一覧を返す。0件は空スライス。
	ListByCase(ctx context.Context, caseID string) ([]*model.Target, error)

	// CountByStatus は指定ステータスのターゲット数を返す。
	CountByStatus(ctx context.Context, status model.TargetStatus) (int, error)

	// ListDueForCheck はチェック対象のターゲットを取得する。
	// status = 'filed' かつ未チェックまたはlast_checked_atがstaleBefore以前の行を
	// FOR UPDATE SKIP LOCKEDで排他的に取得する。
	ListDueForCheck(ctx context.Context, staleBefore time.Time, limit int) ([]*model.Target, error)

	// UpdateCheckResult はチェック結果のステータスとチェック日時を更新する。
	UpdateCheckResult(ctx context.Context, id string, status model.TargetStatus, checkedAt time.Time) error
}
