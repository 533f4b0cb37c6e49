// Package pgxutil bridges database/sql connection pooling with pgx-native
// queries and transactions, and provides the bounded-retry transaction
// combinator used by the hiring pipeline.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
)

// TxConfig groups parameters for WithPgxTx to keep parameter count <= 3.
type TxConfig struct {
	Opts *sql.TxOptions
	Fn   func(pgx.Tx) error
}

// ToPgxTxOptions converts sql.TxOptions to pgx.TxOptions.
func ToPgxTxOptions(opts *sql.TxOptions) pgx.TxOptions {
	var pgxOpts pgx.TxOptions
	if opts == nil {
		return pgxOpts
	}
	pgxOpts.IsoLevel = toPgxIsoLevel(opts.Isolation)
	if opts.ReadOnly {
		pgxOpts.AccessMode = pgx.ReadOnly
	} else {
		pgxOpts.AccessMode = pgx.ReadWrite
	}
	return pgxOpts
}

func toPgxIsoLevel(level sql.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case sql.LevelDefault:
		return pgx.TxIsoLevel("") // server default
	case sql.LevelSerializable, sql.LevelLinearizable:
		return pgx.Serializable
	case sql.LevelRepeatableRead, sql.LevelSnapshot:
		return pgx.RepeatableRead
	case sql.LevelReadCommitted, sql.LevelWriteCommitted:
		return pgx.ReadCommitted
	case sql.LevelReadUncommitted:
		return pgx.ReadUncommitted
	default:
		return pgx.TxIsoLevel("")
	}
}

// WithPgxConn acquires a *pgx.Conn via the stdlib bridge and executes fn with it.
func WithPgxConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) (err error) {
	conn, connErr := db.Conn(ctx)
	if connErr != nil {
		return fmt.Errorf("get conn from pool: %w", connErr)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && !errors.Is(closeErr, sql.ErrConnDone) {
			err = errors.Join(err, fmt.Errorf("close conn: %w", closeErr))
		}
	}()

	return conn.Raw(func(dc any) error {
		std, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		return fn(std.Conn())
	})
}

// WithPgxTx runs the given function within a pgx transaction using the stdlib bridge.
// Any error from fn rolls the transaction back; no partial writes survive.
func WithPgxTx(ctx context.Context, db *sql.DB, cfg TxConfig) error {
	return WithPgxConn(ctx, db, func(pgxConn *pgx.Conn) (err error) {
		tx, beginErr := pgxConn.BeginTx(ctx, ToPgxTxOptions(cfg.Opts))
		if beginErr != nil {
			return fmt.Errorf("begin pgx tx: %w", beginErr)
		}
		defer func() {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rollbackErr))
			}
		}()
		if fnErr := cfg.Fn(tx); fnErr != nil {
			return fnErr
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return fmt.Errorf("commit pgx tx: %w", commitErr)
		}
		return nil
	})
}

// RunTxConfig groups parameters for RunTx.
type RunTxConfig struct {
	Opts *sql.TxOptions
	// MaxAttempts bounds the number of transaction attempts. Values <= 0
	// mean a single attempt.
	MaxAttempts int
	// RetryDelay is the base delay between attempts, scaled linearly by the
	// attempt number.
	RetryDelay time.Duration
	Fn         func(pgx.Tx) error
}

// RunTx runs fn inside a transaction, retrying from a fresh read when the
// commit loses to a concurrent update (serialization failure or deadlock).
// The retry policy is explicit rather than an implicit store feature so
// callers can see and test the bound. Losing attempts are rolled back whole;
// fn must be safe to re-run.
func RunTx(ctx context.Context, db *sql.DB, cfg RunTxConfig) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = WithPgxTx(ctx, db, TxConfig{Opts: cfg.Opts, Fn: cfg.Fn})
		if err == nil || !retryableTxError(err) || attempt == attempts {
			return err
		}

		if cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * cfg.RetryDelay):
			}
		}
	}
	return err
}

// retryableTxError reports whether a fresh transaction attempt may succeed.
func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
