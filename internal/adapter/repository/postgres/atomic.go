package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rorschach/staybooking/internal/core/domain"
)

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type txCtxKey struct{}

// dbtx is the slice of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// querier returns the transaction bound to ctx by AtomicRunner, or the bare
// pool outside one. Repositories in this package route every statement
// through it.
func querier(ctx context.Context, db *sql.DB) dbtx {
	if tx, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// AtomicRunner provides the per-stay atomic unit on top of SERIALIZABLE
// transactions. Postgres serializes on the rows a transaction touches, so
// the stay scoping of the contract comes from the row keys; conflicting
// units abort with a serialization failure and are retried a bounded number
// of times before surfacing a timeout.
type AtomicRunner struct {
	db         *sql.DB
	maxRetries int
}

func NewAtomicRunner(db *sql.DB, maxRetries int) *AtomicRunner {
	return &AtomicRunner{db: db, maxRetries: maxRetries}
}

func (r *AtomicRunner) WithinStay(ctx context.Context, stayID uuid.UUID, fn func(ctx context.Context) error) error {
	base := 100 * time.Millisecond

	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= r.maxRetries {
			log.Printf("transaction on stay %s gave up after %d retries: %v", stayID, r.maxRetries, err)
			return domain.ErrTransactionTimeout
		}

		// No defer in the loop: the previous transaction is already
		// finished before we sleep.
		backoff := time.NewTimer(base << attempt)
		select {
		case <-ctx.Done():
			backoff.Stop()
			return ctx.Err()
		case <-backoff.C:
		}
	}
}

func (r *AtomicRunner) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqSerializationFailure || string(pqErr.Code) == pqDeadlockDetected
}
