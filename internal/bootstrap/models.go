// AngelaMos | 2026
// models.go

// Package bootstrap binds the postgres-backed default models the same way
// for every binary.
package bootstrap

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clergo/steago/internal/config"
	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/unified"
	"github.com/clergo/steago/internal/user"
	"github.com/clergo/steago/internal/workspace"
)

// BindModels returns a sealed registry holding the default user and
// workspace models for the configured tables. Each table is checked against
// the live database before binding.
func BindModels(
	ctx context.Context,
	db *sqlx.DB,
	cfg config.ModelsConfig,
	logger *slog.Logger,
) (*unified.Registry, error) {
	users := user.NewModel(db, cfg.UserTable,
		user.WithPreCommitHooks(AuditHook[*user.User](logger, "user")),
	)
	workspaces := workspace.NewModel(db, cfg.WorkspaceTable,
		workspace.WithPreCommitHooks(AuditHook[*workspace.Workspace](logger, "workspace")),
	)

	for _, schema := range []unified.Schema{users.Schema(), workspaces.Schema()} {
		if err := core.VerifyColumns(ctx, db, schema.Table, schema.Columns); err != nil {
			return nil, err
		}
	}

	registry := unified.NewRegistry()
	if err := registry.Bind(users, workspaces); err != nil {
		return nil, err
	}
	if err := registry.Seal(); err != nil {
		return nil, err
	}

	logger.Info("unified models bound",
		"user_table", cfg.UserTable,
		"workspace_table", cfg.WorkspaceTable,
	)
	return registry, nil
}

type auditable interface {
	GetUUID() uuid.UUID
}

// AuditHook records every write at debug level before it commits.
func AuditHook[T auditable](logger *slog.Logger, kind string) core.PreCommitHook[T] {
	return func(ctx context.Context, _ *sqlx.Tx, entity T) error {
		logger.DebugContext(ctx, "entity persisted",
			"kind", kind,
			"uuid", entity.GetUUID(),
		)
		return nil
	}
}
