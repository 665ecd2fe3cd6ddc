// AngelaMos | 2026
// model.go

package workspace

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
	tracerName  = "steago/workspace"
	metricsKind = "workspace"
)

type Option func(*Model)

// WithPreCommitHooks registers hooks that run inside every write transaction.
func WithPreCommitHooks(hooks ...core.PreCommitHook[*Workspace]) Option {
	return func(m *Model) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// Model is the default postgres-backed unified.WorkspaceModel.
type Model struct {
	db       core.TxBeginner
	repo     Repository
	table    string
	validate *validator.Validate
	hooks    []core.PreCommitHook[*Workspace]
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
		Columns: unified.RequiredWorkspaceColumns,
	}
}

func (m *Model) Create(
	ctx context.Context,
	params unified.CreateWorkspaceParams,
) (unified.Workspace, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "workspace.create")

	w, err := m.create(ctx, params)
	core.EndSpan(span, err)
	metrics.ObserveEntityCreated(metricsKind, createResult(err))
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (m *Model) create(
	ctx context.Context,
	params unified.CreateWorkspaceParams,
) (*Workspace, error) {
	if err := m.validate.Struct(params); err != nil {
		return nil, fmt.Errorf(
			"create workspace: %s: %w",
			core.FormatValidationError(err),
			core.ErrInvalidInput,
		)
	}

	now := core.Clock()
	w := &Workspace{
		UUID:       uuid.New(),
		Name:       params.Name,
		Status:     unified.WorkspaceStatusActive,
		CreatedTS:  now,
		ModifiedTS: now,
	}

	if err := core.Store(ctx, m.db, w, m.insert, m.hooks...); err != nil {
		return nil, err
	}

	return w, nil
}

func (m *Model) GetByID(ctx context.Context, id int64) (unified.Workspace, error) {
	w, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (m *Model) GetByUUID(
	ctx context.Context,
	id uuid.UUID,
) (unified.Workspace, error) {
	w, err := m.repo.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (m *Model) SetStatus(
	ctx context.Context,
	id int64,
	status unified.WorkspaceStatus,
) (unified.Workspace, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "workspace.set_status",
		attribute.Int64("workspace.id", id),
		attribute.String("workspace.status", status.String()),
	)

	w, err := m.setStatus(ctx, id, status)
	core.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (m *Model) setStatus(
	ctx context.Context,
	id int64,
	status unified.WorkspaceStatus,
) (*Workspace, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("set workspace status %d: %w", status, core.ErrInvalidInput)
	}

	w, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	w.Status = status
	if err := core.Persist(ctx, m.db, w, m.updateStatus, m.hooks...); err != nil {
		return nil, err
	}

	return w, nil
}

func (m *Model) Delete(ctx context.Context, id int64) error {
	_, err := m.SetStatus(ctx, id, unified.WorkspaceStatusDeleted)
	return err
}

func (m *Model) List(
	ctx context.Context,
	params ListParams,
) ([]unified.Workspace, int, error) {
	rows, total, err := m.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	out := make([]unified.Workspace, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, total, nil
}

func (m *Model) insert(ctx context.Context, tx *sqlx.Tx, w *Workspace) error {
	return m.repo.WithTx(tx).Insert(ctx, w)
}

func (m *Model) updateStatus(ctx context.Context, tx *sqlx.Tx, w *Workspace) error {
	return m.repo.WithTx(tx).UpdateStatus(ctx, w)
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

var _ unified.WorkspaceModel = (*Model)(nil)
