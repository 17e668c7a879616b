package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sales/internal/aggregate"
	"sales/internal/core"
	applog "sales/internal/log"

	_ "modernc.org/sqlite"
)

const (
	upsertAggregateSQL = `
INSERT INTO aggregates (group_key, total_cents, record_count)
VALUES (?, ?, 1)
ON CONFLICT (group_key) DO UPDATE SET
    total_cents  = total_cents + excluded.total_cents,
    record_count = record_count + 1
WHERE aggregates.total_cents <= 9223372036854775807 - excluded.total_cents`

	selectAggregatesSQL = `
SELECT group_key, total_cents, record_count
FROM aggregates
ORDER BY total_cents DESC, group_key ASC`
)

var ErrFinished = errors.New("aggregation already finished")

// SQLiteAggregator folds records into a transient in-memory SQLite table.
// Each Add is an upsert, so raw records are never stored. The database is
// discarded on Close.
type SQLiteAggregator struct {
	db     *sql.DB
	tx     *sql.Tx
	upsert *sql.Stmt
}

var _ aggregate.Aggregator = (*SQLiteAggregator)(nil)

func NewSQLiteAggregator(ctx context.Context) (*SQLiteAggregator, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentStorage)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.DebugContext(ctx, "Aggregation schema ready", applog.FieldOperation, applog.OpMigrate)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	upsert, err := tx.PrepareContext(ctx, upsertAggregateSQL)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}

	return &SQLiteAggregator{db: db, tx: tx, upsert: upsert}, nil
}

// Add implements aggregate.Aggregator
func (a *SQLiteAggregator) Add(ctx context.Context, key core.GroupKey, amount core.Money) error {
	if a.tx == nil {
		return ErrFinished
	}
	res, err := a.upsert.ExecContext(ctx, string(key), amount.Cents)
	if err != nil {
		return fmt.Errorf("upsert aggregate %q: %w", key, err)
	}
	// The upsert skips the update, rather than promoting the total to REAL,
	// when the sum would not fit in int64.
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert aggregate %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("group %q: %w", key, core.ErrAmountOverflow)
	}
	return nil
}

// Result implements aggregate.Aggregator. It commits the fold; further Adds fail.
func (a *SQLiteAggregator) Result(ctx context.Context) ([]core.ReportRow, error) {
	if a.tx != nil {
		err := a.tx.Commit()
		a.tx = nil
		if err != nil {
			return nil, fmt.Errorf("commit aggregates: %w", err)
		}
	}

	rows, err := a.db.QueryContext(ctx, selectAggregatesSQL)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var out []core.ReportRow
	for rows.Next() {
		var (
			key   string
			cents int64
			count int64
		)
		if err := rows.Scan(&key, &cents, &count); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, core.ReportRow{Key: core.GroupKey(key), Total: core.Money{Cents: cents}, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}
	return out, nil
}

// Close discards the database.
func (a *SQLiteAggregator) Close() error {
	if a.tx != nil {
		a.tx.Rollback()
		a.tx = nil
	}
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}
