// AngelaMos | 2026
// integration_test.go

package user_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/clergo/steago/internal/auth"
	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/lifecycle"
	"github.com/clergo/steago/internal/unified"
	"github.com/clergo/steago/internal/user"
	"github.com/clergo/steago/internal/workspace"
)

const testSchema = `
CREATE TABLE hub_workspace (
	id          BIGSERIAL PRIMARY KEY,
	uuid        UUID         NOT NULL UNIQUE,
	name        VARCHAR(255) NOT NULL,
	status      SMALLINT     NOT NULL,
	created_ts  TIMESTAMPTZ  NOT NULL,
	modified_ts TIMESTAMPTZ  NOT NULL
);

CREATE TABLE hub_user (
	id           BIGSERIAL PRIMARY KEY,
	uuid         UUID         NOT NULL UNIQUE,
	name         VARCHAR(255) NOT NULL,
	email        VARCHAR(255) NOT NULL UNIQUE,
	username     VARCHAR(255) NOT NULL UNIQUE,
	status       SMALLINT     NOT NULL,
	type         SMALLINT     NOT NULL,
	workspace_id BIGINT       NOT NULL REFERENCES hub_workspace (id),
	created_ts   TIMESTAMPTZ  NOT NULL,
	modified_ts  TIMESTAMPTZ  NOT NULL
);
`

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_PASSWORD": "steago",
				"POSTGRES_USER":     "steago",
				"POSTGRES_DB":       "steago",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf(
		"postgres://steago:steago@%s:%d/steago?sslmode=disable",
		host,
		port.Int(),
	)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, testSchema)
	require.NoError(t, err)

	return db
}

func TestPostgres_SignInScenario(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	reg := unified.NewRegistry()
	require.NoError(t, reg.Bind(
		user.NewModel(db, "hub_user"),
		workspace.NewModel(db, "hub_workspace"),
	))
	require.NoError(t, reg.Seal())

	workspaces := reg.MustWorkspace()
	users := reg.MustUser()

	acme, err := workspaces.Create(ctx, unified.CreateWorkspaceParams{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, unified.WorkspaceStatusActive, acme.GetStatus())

	ann, err := users.Create(ctx, unified.CreateUserParams{
		Name:        "Ann",
		Email:       "ann@acme.io",
		Type:        unified.UserTypeHubUser,
		WorkspaceID: acme.GetID(),
	})
	require.NoError(t, err)

	stored, err := users.GetByUUID(ctx, ann.GetUUID())
	require.NoError(t, err)
	assert.Equal(t, "ann@acme.io", stored.GetUsername())
	assert.Equal(t, unified.UserStatusActive, stored.GetStatus())
	assert.True(t, stored.GetCreatedTS().Equal(stored.GetModifiedTS()))
	assert.Equal(t, ann.DisplayPicture(), stored.DisplayPicture())

	resolver := auth.NewResolver(reg)
	principal, err := resolver.ResolvePrincipal(ctx, ann.GetUUID().String())
	require.NoError(t, err)
	assert.Equal(t, ann.GetID(), principal.GetID())
	require.NoError(t, lifecycle.CheckPrincipal(ctx, principal, workspaces))

	_, err = workspaces.SetStatus(ctx, acme.GetID(), unified.WorkspaceStatusSuspended)
	require.NoError(t, err)

	principal, err = resolver.ResolvePrincipal(ctx, ann.GetUUID().String())
	require.NoError(t, err)
	assert.ErrorIs(t, lifecycle.CheckPrincipal(ctx, principal, workspaces), core.ErrForbidden)
}

func TestPostgres_DuplicateEmailLeavesNoRow(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	workspaces := workspace.NewModel(db, "hub_workspace")
	users := user.NewModel(db, "hub_user")

	acme, err := workspaces.Create(ctx, unified.CreateWorkspaceParams{Name: "Acme"})
	require.NoError(t, err)

	params := unified.CreateUserParams{Name: "Ann", Email: "ann@acme.io", WorkspaceID: acme.GetID()}
	_, err = users.Create(ctx, params)
	require.NoError(t, err)

	params.Name = "Impostor"
	_, err = users.Create(ctx, params)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM hub_user"))
	assert.Equal(t, 1, count)

	_, err = users.Create(ctx, unified.CreateUserParams{
		Name: "Ghost", Email: "ghost@acme.io", WorkspaceID: acme.GetID() + 100,
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
