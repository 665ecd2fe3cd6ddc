// AngelaMos | 2026
// repository.go

package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/unified"
)

type Repository interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx *sqlx.Tx) Repository
	Insert(ctx context.Context, w *Workspace) error
	GetByID(ctx context.Context, id int64) (*Workspace, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	UpdateStatus(ctx context.Context, w *Workspace) error
	List(ctx context.Context, params ListParams) ([]Workspace, int, error)
}

type repository struct {
	db     core.DBTX
	table  string
	fields string
}

func NewRepository(db core.DBTX, table string) Repository {
	return &repository{
		db:     db,
		table:  table,
		fields: strings.Join(unified.RequiredWorkspaceColumns, ", "),
	}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx, table: r.table, fields: r.fields}
}

func (r *repository) Insert(ctx context.Context, w *Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (uuid, name, status, created_ts, modified_ts)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, r.table)

	err := r.db.GetContext(ctx, &w.ID, query,
		w.UUID,
		w.Name,
		w.Status,
		w.CreatedTS,
		w.ModifiedTS,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("insert workspace: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert workspace: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Workspace, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.fields, r.table)

	var w Workspace
	err := r.db.GetContext(ctx, &w, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get workspace: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &w, nil
}

func (r *repository) GetByUUID(
	ctx context.Context,
	id uuid.UUID,
) (*Workspace, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE uuid = $1`, r.fields, r.table)

	var w Workspace
	err := r.db.GetContext(ctx, &w, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get workspace by uuid: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace by uuid: %w", err)
	}

	return &w, nil
}

func (r *repository) UpdateStatus(ctx context.Context, w *Workspace) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, modified_ts = $3
		WHERE id = $1`, r.table)

	result, err := r.db.ExecContext(ctx, query, w.ID, w.Status, w.ModifiedTS)
	if err != nil {
		return fmt.Errorf("update workspace status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update workspace status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update workspace status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Workspace, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.table, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count workspaces: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_ts DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		r.fields, r.table, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var workspaces []Workspace
	if err := r.db.SelectContext(ctx, &workspaces, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workspaces: %w", err)
	}

	return workspaces, total, nil
}
