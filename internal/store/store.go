// Package store is the relational data layer: the connection provider, the
// referential-integrity checker, the bulk write coordinator, and the
// read/aggregation catalogue.
//
// All mutation flows through CreateXxx batch methods, each of which runs in a
// single transaction: foreign keys are verified before any insert, rows are
// inserted in input order capturing generated ids, and the whole batch commits
// or rolls back as one. Reads are single statements without a transaction.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dialect builds all SQL in this package.
var dialect = goqu.Dialect("postgres")

// DB is the subset of pgx operations the store needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the connection surface the store runs on: plain statements plus the
// ability to begin a transaction. Satisfied by *pgxpool.Pool.
type Pool interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides transactional writes and catalogue reads over a pgx pool.
type Store struct {
	pool   Pool
	logger *slog.Logger
}

// New creates a Store on top of an established connection pool.
// A nil logger falls back to slog.Default.
func New(pool Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// withTx runs fn inside a transaction. The deferred rollback is a no-op once
// the transaction has committed, so the connection is released on every exit
// path, including panics inside fn.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return failed(op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return failed(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return failed(op, err)
	}
	return nil
}

// isNoRows reports whether err is the driver's empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// queryDuration logs a completed read with its timing at debug level.
func (s *Store) queryDuration(op string, start time.Time, rows int) {
	s.logger.Debug("query completed",
		"op", op,
		"rows", rows,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
