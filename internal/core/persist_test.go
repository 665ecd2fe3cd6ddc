// AngelaMos | 2026
// persist_test.go

package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clergo/steago/internal/core"
)

type record struct {
	name     string
	modified time.Time
}

func (r *record) Touch(ts time.Time) { r.modified = ts }

func writeRecord(ctx context.Context, tx *sqlx.Tx, r *record) error {
	_, err := tx.ExecContext(ctx, "UPDATE records SET name = $1, modified_ts = $2", r.name, r.modified)
	return err
}

func TestPersist_TouchesAndCommits(t *testing.T) {
	db, mock := newMock(t)

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := core.Clock
	core.Clock = func() time.Time { return fixed }
	t.Cleanup(func() { core.Clock = prev })

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE records").
		WithArgs("acme", fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var hookSaw time.Time
	hook := func(_ context.Context, _ *sqlx.Tx, r *record) error {
		hookSaw = r.modified
		return nil
	}

	r := &record{name: "acme"}
	require.NoError(t, core.Persist(context.Background(), db, r, writeRecord, hook))
	assert.Equal(t, fixed, r.modified)
	assert.Equal(t, fixed, hookSaw)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_HookErrorRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	vetoed := errors.New("vetoed")
	err := core.Store(context.Background(), db, &record{name: "acme"}, writeRecord,
		func(context.Context, *sqlx.Tx, *record) error { return vetoed },
	)
	assert.ErrorIs(t, err, vetoed)
	assert.Contains(t, err.Error(), "pre-commit hook 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DoesNotTouch(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := &record{name: "acme"}
	require.NoError(t, core.Store(context.Background(), db, r, writeRecord))
	assert.True(t, r.modified.IsZero())
}

func TestInTx_PanicRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = core.InTx(context.Background(), db, func(*sqlx.Tx) error { panic("boom") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
