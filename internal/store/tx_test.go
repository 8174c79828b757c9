package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransactionRollsBack(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := database.WithTransaction(ctx, db.DB, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO Product (name, price) VALUES ('Temp', 1)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, db.Count(t, "Product"))
}

func TestWithRetryRetriesTransientErrors(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	attempts := 0
	err := database.WithRetry(ctx, db.DB, database.TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		attempts++
		if attempts < 3 {
			return &pq.Error{Code: "40001"}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO Product (name, price) VALUES ('Kept', 1)`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, db.Count(t, "Product"))
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	db := pgtest.New(t)

	attempts := 0
	err := database.WithRetry(context.Background(), db.DB, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		attempts++
		return database.ErrEmptyCart
	})
	assert.ErrorIs(t, err, database.ErrEmptyCart)
	assert.Equal(t, 1, attempts)
}
