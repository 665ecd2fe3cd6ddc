// AngelaMos | 2026
// persist.go

package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(
		ctx context.Context,
		dest any,
		query string,
		args ...any,
	) error
}

// TxBeginner opens transactions; *sqlx.DB implements it.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// InTx runs fn inside a transaction. A nil error from fn commits, anything
// else (including a panic) rolls back.
func InTx(ctx context.Context, db TxBeginner, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback() //nolint:errcheck // best-effort rollback on panic
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Stamped entities carry a modification timestamp that Persist refreshes.
type Stamped interface {
	Touch(ts time.Time)
}

// PreCommitHook runs inside the persist transaction after the write and
// before commit. Returning an error aborts the commit.
type PreCommitHook[T any] func(ctx context.Context, tx *sqlx.Tx, entity T) error

// WriteFunc performs the actual statement(s) for an entity.
type WriteFunc[T any] func(ctx context.Context, tx *sqlx.Tx, entity T) error

// Clock is overridable in tests.
var Clock = func() time.Time { return time.Now().UTC() }

// Store writes the entity and runs hooks in a single transaction.
func Store[T any](
	ctx context.Context,
	db TxBeginner,
	entity T,
	write WriteFunc[T],
	hooks ...PreCommitHook[T],
) error {
	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := write(ctx, tx, entity); err != nil {
			return err
		}

		for i, hook := range hooks {
			if err := hook(ctx, tx, entity); err != nil {
				return fmt.Errorf("pre-commit hook %d: %w", i, err)
			}
		}

		return nil
	})
}

// Persist refreshes the entity's modified timestamp and then stores it.
func Persist[T Stamped](
	ctx context.Context,
	db TxBeginner,
	entity T,
	write WriteFunc[T],
	hooks ...PreCommitHook[T],
) error {
	entity.Touch(Clock())
	return Store(ctx, db, entity, write, hooks...)
}
