package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
)

// PostgresCaseRepo はPostgreSQLを使用した案件リポジトリ。
// すべての読み取り・更新クエリは (id, client_id) の両方でスコープし、
// 「未存在」と「他人所有」をクエリの段階で区別不能にする。
type PostgresCaseRepo struct {
	db *sql.DB
}

// NewPostgresCaseRepo はPostgresCaseRepoを生成する。
func NewPostgresCaseRepo(db *sql.DB) *PostgresCaseRepo {
	return &PostgresCaseRepo{db: db}
}

// Create は案件を作成する。
func (r *PostgresCaseRepo) Create(ctx context.Context, c *model.Case) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cases (id, client_id, title, description, status, priority, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ClientID, c.Title, c.Description, c.Status, c.Priority, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}
	return nil
}

// FindByIDForClient はIDと所有者でスコープした案件を取得する。
// 一致しない場合はnilを返す。
func (r *PostgresCaseRepo) FindByIDForClient(ctx context.Context, id, clientID string) (*model.Case, error) {
	c := &model.Case{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, title, description, status, priority, created_at, updated_at
		 FROM cases
		 WHERE id = $1 AND client_id = $2`,
		id, clientID,
	).Scan(&c.ID, &c.ClientID, &c.Title, &c.Description, &c.Status, &c.Priority, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find case: %w", err)
	}

	return c, nil
}

// ListByClient は所有者の案件一覧を作成日時降順で返す。
func (r *PostgresCaseRepo) ListByClient(ctx context.Context, clientID string) ([]*model.Case, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, title, description, status, priority, created_at, updated_at
		 FROM cases
		 WHERE client_id = $1
		 ORDER BY created_at DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	cases := []*model.Case{}
	for rows.Next() {
		c := &model.Case{}
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Title, &c.Description,
			&c.Status, &c.Priority, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}

	return cases, nil
}

// UpdateStatusForClient は所有者スコープで案件ステータスを更新し、更新後の案件を返す。
// 一致しない場合はnilを返す。
func (r *PostgresCaseRepo) UpdateStatusForClient(ctx context.Context, id, clientID string, status model.CaseStatus, updatedAt time.Time) (*model.Case, error) {
	c := &model.Case{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE cases
		 SET status = $3, updated_at = $4
		 WHERE id = $1 AND client_id = $2
		 RETURNING id, client_id, title, description, status, priority, created_at, updated_at`,
		id, clientID, status, updatedAt,
	).Scan(&c.ID, &c.ClientID, &c.Title, &c.Description, &c.Status, &c.Priority, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update case status: %w", err)
	}

	return c, nil
}

// CountDistinctClients は1件以上の案件を持つクライアント数を返す。
func (r *PostgresCaseRepo) CountDistinctClients(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT client_id) FROM cases`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct clients: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ CaseRepository = (*PostgresCaseRepo)(nil)
