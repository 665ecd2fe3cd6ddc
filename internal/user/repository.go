// AngelaMos | 2026
// repository.go

package user

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
	WithTx(tx *sqlx.Tx) Repository
	Insert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateStatus(ctx context.Context, user *User) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
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
		fields: strings.Join(unified.RequiredUserColumns, ", "),
	}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx, table: r.table, fields: r.fields}
}

func (r *repository) Insert(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (uuid, name, email, username, status, type,
		                workspace_id, created_ts, modified_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`, r.table)

	err := r.db.GetContext(ctx, &user.ID, query,
		user.UUID,
		user.Name,
		user.Email,
		user.Username,
		user.Status,
		user.Type,
		user.WorkspaceID,
		user.CreatedTS,
		user.ModifiedTS,
	)
	switch {
	case err == nil:
		return nil
	case core.IsDuplicateKey(err):
		return fmt.Errorf(
			"insert user (%s): %w",
			core.ConstraintName(err),
			core.ErrDuplicateKey,
		)
	case core.IsForeignKeyViolation(err):
		return fmt.Errorf(
			"insert user: workspace %d does not exist: %w",
			user.WorkspaceID,
			core.ErrInvalidInput,
		)
	default:
		return fmt.Errorf("insert user: %w", err)
	}
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByUUID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "get user by uuid", "uuid = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", normalizeEmail(email))
}

func (r *repository) getOne(
	ctx context.Context,
	op, predicate string,
	arg any,
) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, r.fields, r.table, predicate)

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) UpdateStatus(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, modified_ts = $3
		WHERE id = $1`, r.table)

	result, err := r.db.ExecContext(ctx, query, user.ID, user.Status, user.ModifiedTS)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update user status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}

	if params.WorkspaceID > 0 {
		conditions = append(conditions, fmt.Sprintf("workspace_id = $%d", argIdx))
		args = append(args, params.WorkspaceID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.table, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_ts DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		r.fields, r.table, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
