// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/clergo/steago/internal/config"
)

const pingTimeout = 5 * time.Second

type Database struct {
	DB *sqlx.DB
}

// NewDatabase opens the pgx-backed pool and fails fast when the server is
// unreachable.
func NewDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
) (*Database, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	configurePool(db, cfg)

	d := &Database{DB: db}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on connection failure
		return nil, err
	}

	return d, nil
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	// Spread reconnects so the whole pool does not recycle at once.
	db.SetConnMaxLifetime(jitter(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

const columnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1`

// VerifyColumns checks that table exists in the current schema and carries
// every listed column. It runs once per bound model at startup.
func VerifyColumns(
	ctx context.Context,
	q sqlx.QueryerContext,
	table string,
	columns []string,
) error {
	var present []string
	if err := sqlx.SelectContext(ctx, q, &present, columnsQuery, table); err != nil {
		return fmt.Errorf("inspect table %s: %w", table, err)
	}

	if len(present) == 0 {
		return fmt.Errorf("table %s does not exist: %w", table, ErrNotConfigured)
	}

	var missing []string
	for _, c := range columns {
		if !slices.Contains(present, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf(
			"table %s is missing columns %s: %w",
			table,
			strings.Join(missing, ", "),
			ErrNotConfigured,
		)
	}

	return nil
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	//nolint:gosec // G404: pool jitter, not security sensitive
	return base + time.Duration(rand.Int64N(int64(base/7)+1))
}

// EscapeLike escapes LIKE/ILIKE wildcards in user supplied search text.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
