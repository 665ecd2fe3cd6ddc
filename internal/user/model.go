// AngelaMos | 2026
// model.go

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/metrics"
	"github.com/clergo/steago/internal/unified"
)

const (
	tracerName  = "steago/user"
	metricsKind = "user"
)

type Option func(*Model)

// WithPreCommitHooks registers hooks that run inside every write transaction.
func WithPreCommitHooks(hooks ...core.PreCommitHook[*User]) Option {
	return func(m *Model) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// Model is the default postgres-backed unified.UserModel.
type Model struct {
	db       core.TxBeginner
	repo     Repository
	table    string
	validate *validator.Validate
	hooks    []core.PreCommitHook[*User]
}

func NewModel(db *sqlx.DB, table string, opts ...Option) *Model {
	m := &Model{
		db:       db,
		repo:     NewRepository(db, table),
		table:    table,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Schema() unified.Schema {
	return unified.Schema{
		Table:   m.table,
		Columns: unified.RequiredUserColumns,
	}
}

// Create inserts a new user. The username is the email address and the
// initial status is ACTIVE.
func (m *Model) Create(
	ctx context.Context,
	params unified.CreateUserParams,
) (unified.User, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.create",
		attribute.Int64("user.workspace_id", params.WorkspaceID),
		attribute.String("user.type", params.Type.String()),
	)

	u, err := m.create(ctx, params)
	core.EndSpan(span, err)
	metrics.ObserveEntityCreated(metricsKind, createResult(err))
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (m *Model) create(
	ctx context.Context,
	params unified.CreateUserParams,
) (*User, error) {
	params.Email = normalizeEmail(params.Email)

	if err := m.validate.Struct(params); err != nil {
		return nil, fmt.Errorf(
			"create user: %s: %w",
			core.FormatValidationError(err),
			core.ErrInvalidInput,
		)
	}
	if !params.Type.Valid() {
		return nil, fmt.Errorf("create user: unknown type %d: %w", params.Type, core.ErrInvalidInput)
	}

	now := core.Clock()
	u := &User{
		UUID:        uuid.New(),
		Name:        params.Name,
		Email:       params.Email,
		Username:    params.Email,
		Status:      unified.UserStatusActive,
		Type:        params.Type,
		WorkspaceID: params.WorkspaceID,
		CreatedTS:   now,
		ModifiedTS:  now,
	}

	if err := core.Store(ctx, m.db, u, m.insert, m.hooks...); err != nil {
		return nil, err
	}

	return u, nil
}

func (m *Model) GetByID(ctx context.Context, id int64) (unified.User, error) {
	u, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Model) GetByUUID(ctx context.Context, id uuid.UUID) (unified.User, error) {
	u, err := m.repo.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Model) GetByEmail(ctx context.Context, email string) (unified.User, error) {
	u, err := m.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Model) SetStatus(
	ctx context.Context,
	id int64,
	status unified.UserStatus,
) (unified.User, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.set_status",
		attribute.Int64("user.id", id),
		attribute.String("user.status", status.String()),
	)

	u, err := m.setStatus(ctx, id, status)
	core.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (m *Model) setStatus(
	ctx context.Context,
	id int64,
	status unified.UserStatus,
) (*User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("set user status %d: %w", status, core.ErrInvalidInput)
	}

	u, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Status = status
	if err := core.Persist(ctx, m.db, u, m.updateStatus, m.hooks...); err != nil {
		return nil, err
	}

	return u, nil
}

// Delete marks the user DELETED; the row is kept.
func (m *Model) Delete(ctx context.Context, id int64) error {
	_, err := m.SetStatus(ctx, id, unified.UserStatusDeleted)
	return err
}

func (m *Model) List(
	ctx context.Context,
	params ListUsersParams,
) ([]unified.User, int, error) {
	rows, total, err := m.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	out := make([]unified.User, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, total, nil
}

func (m *Model) insert(ctx context.Context, tx *sqlx.Tx, u *User) error {
	return m.repo.WithTx(tx).Insert(ctx, u)
}

func (m *Model) updateStatus(ctx context.Context, tx *sqlx.Tx, u *User) error {
	return m.repo.WithTx(tx).UpdateStatus(ctx, u)
}

func createResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, core.ErrDuplicateKey):
		return metrics.ResultConflict
	case errors.Is(err, core.ErrInvalidInput):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

var _ unified.UserModel = (*Model)(nil)
