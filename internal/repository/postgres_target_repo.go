package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
)

// PostgresTargetRepo はPostgreSQLを使用したターゲットリポジトリ。
type PostgresTargetRepo struct {
	db *sql.DB
}

// NewPostgresTargetRepo はPostgresTargetRepoを生成する。
func NewPostgresTargetRepo(db *sql.DB) *PostgresTargetRepo {
	return &PostgresTargetRepo{db: db}
}

// CreateBatch はターゲットを一括作成する。空スライスは何もしない。
// バッチ全体を1トランザクションで挿入する。
func (r *PostgresTargetRepo) CreateBatch(ctx context.Context, targets []*model.Target) error {
	if len(targets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO targets (id, case_id, url, domain, status, last_checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range targets {
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.CaseID, t.URL, t.Domain, t.Status, t.LastCheckedAt,
		); err != nil {
			return fmt.Errorf("failed to insert target: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByCase は案件配下のターゲット一覧を返す。
func (r *PostgresTargetRepo) ListByCase(ctx context.Context, caseID string) ([]*model.Target, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, url, domain, status, last_checked_at
		 FROM targets
		 WHERE case_id = $1
		 ORDER BY id`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	targets := []*model.Target{}
	for rows.Next() {
		t := &model.Target{}
		if err := rows.Scan(&t.ID, &t.CaseID, &t.URL, &t.Domain, &t.Status, &t.LastCheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate targets: %w", err)
	}

	return targets, nil
}

// CountByStatus は指定ステータスのターゲット数を返す。
func (r *PostgresTargetRepo) CountByStatus(ctx context.Context, status model.TargetStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM targets WHERE status = $1`,
		status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count targets: %w", err)
	}
	return count, nil
}

// ListDueForCheck はチェック対象のターゲットを取得する。
// 複数ワーカーの同時実行で同じ行を掴まないようFOR UPDATE SKIP LOCKEDを使う。
func (r *PostgresTargetRepo) ListDueForCheck(ctx context.Context, staleBefore time.Time, limit int) ([]*model.Target, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, url, domain, status, last_checked_at
		 FROM targets
		 WHERE status = 'filed'
		   AND (last_checked_at IS NULL OR last_checked_at < $1)
		 ORDER BY last_checked_at ASC NULLS FIRST
		 LIMIT $2
		 FOR UPDATE SKIP LOCKED`,
		staleBefore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets due for check: %w", err)
	}
	defer rows.Close()

	targets := []*model.Target{}
	for rows.Next() {
		t := &model.Target{}
		if err := rows.Scan(&t.ID, &t.CaseID, &t.URL, &t.Domain, &t.Status, &t.LastCheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate targets: %w", err)
	}

	return targets, nil
}

// UpdateCheckResult はチェック結果のステータスとチェック日時を更新する。
func (r *PostgresTargetRepo) UpdateCheckResult(ctx context.Context, id string, status model.TargetStatus, checkedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE targets SET status = $2, last_checked_at = $3 WHERE id = $1`,
		id, status, checkedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update check result: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TargetRepository = (*PostgresTargetRepo)(nil)
