// AngelaMos | 2026
// database_test.go

package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clergo/steago/internal/core"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestVerifyColumns(t *testing.T) {
	required := []string{"id", "uuid", "name", "status"}

	t.Run("all present", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("information_schema.columns").
			WithArgs("core_workspace").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
				AddRow("id").AddRow("uuid").AddRow("name").AddRow("status").AddRow("plan"))

		require.NoError(t, core.VerifyColumns(context.Background(), db, "core_workspace", required))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing table", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("information_schema.columns").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

		err := core.VerifyColumns(context.Background(), db, "ghost", required)
		assert.ErrorIs(t, err, core.ErrNotConfigured)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("missing columns", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("information_schema.columns").
			WithArgs("core_workspace").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("name"))

		err := core.VerifyColumns(context.Background(), db, "core_workspace", required)
		assert.ErrorIs(t, err, core.ErrNotConfigured)
		assert.Contains(t, err.Error(), "uuid, status")
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("information_schema.columns").
			WillReturnError(errors.New("connection reset"))

		err := core.VerifyColumns(context.Background(), db, "core_workspace", required)
		require.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrNotConfigured)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, core.EscapeLike(`50% off_now \o/`))
	assert.Equal(t, "acme", core.EscapeLike("acme"))
}
