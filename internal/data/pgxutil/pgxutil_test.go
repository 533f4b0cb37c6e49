package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlot/backlot-api/internal/testutil"
)

func TestToPgxTxOptions(t *testing.T) {
	assert.Equal(t, pgx.TxOptions{}, ToPgxTxOptions(nil))

	opts := ToPgxTxOptions(&sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: true})
	assert.Equal(t, pgx.Serializable, opts.IsoLevel)
	assert.Equal(t, pgx.ReadOnly, opts.AccessMode)

	opts = ToPgxTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted})
	assert.Equal(t, pgx.ReadCommitted, opts.IsoLevel)
	assert.Equal(t, pgx.ReadWrite, opts.AccessMode)
}

func TestRetryableTxError(t *testing.T) {
	serialization := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	assert.True(t, retryableTxError(serialization))
	assert.True(t, retryableTxError(deadlock))
	assert.False(t, retryableTxError(unique))
	assert.False(t, retryableTxError(errors.New("not a pg error")))

	// Wrapping and joining must not hide the code from the retry check.
	assert.True(t, retryableTxError(fmt.Errorf("commit pgx tx: %w", serialization)))
	assert.True(t, retryableTxError(errors.Join(serialization, errors.New("rollback: closed"))))
}

func TestWithPgxTxRollsBackOnError(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tx_scratch (id INT)`)
		require.NoError(t, err)
		defer func() {
			_, _ = db.ExecContext(ctx, `DROP TABLE IF EXISTS tx_scratch`)
		}()

		sentinel := errors.New("change of plans")
		err = WithPgxTx(ctx, db, TxConfig{Fn: func(tx pgx.Tx) error {
			if _, execErr := tx.Exec(ctx, `INSERT INTO tx_scratch VALUES (1)`); execErr != nil {
				return execErr
			}
			return sentinel
		}})
		require.ErrorIs(t, err, sentinel, "the function's error must surface unchanged")

		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tx_scratch`).Scan(&n))
		assert.Zero(t, n, "failed transaction must leave no rows behind")

		require.NoError(t, WithPgxTx(ctx, db, TxConfig{Fn: func(tx pgx.Tx) error {
			_, execErr := tx.Exec(ctx, `INSERT INTO tx_scratch VALUES (2)`)
			return execErr
		}}))
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tx_scratch`).Scan(&n))
		assert.Equal(t, 1, n)
	})
}
