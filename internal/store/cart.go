package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
)

// AddCartEntry always inserts a new row, even when the user already has an
// entry for the same product.
func AddCartEntry(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.CartEntry, error) {
	if quantity < 1 {
		return nil, database.ErrInvalidQuantity
	}

	entry := &models.CartEntry{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO Cart (user_id, product_id, quantity)
			 VALUES ($1, $2, $3)
			 RETURNING id, user_id, product_id, quantity`,
			userID, productID, quantity).Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ProductID,
			&entry.Quantity,
		)
		if err != nil {
			return fmt.Errorf("add cart entry: %w", database.TranslateError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func ListCart(ctx context.Context, db *sql.DB, userID int64) ([]models.CartLine, error) {
	query := `
		SELECT c.id, p.name, c.quantity
		FROM Cart c
		JOIN Product p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.ID, &line.ProductName, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// RemoveCartEntry deletes one entry owned by userID. An entry that exists but
// belongs to another user is reported as not found and left untouched.
func RemoveCartEntry(ctx context.Context, db *sql.DB, userID, entryID int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM Cart WHERE id = $1 AND user_id = $2`,
			entryID, userID)
		if err != nil {
			return fmt.Errorf("remove cart entry: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return database.ErrCartEntryNotFound
		}

		return nil
	})
}

// priceCart reads and locks the user's cart entries together with the current
// product price.
func priceCart(ctx context.Context, tx *sql.Tx, userID int64) ([]models.PricedCartEntry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT c.id, c.product_id, c.quantity, p.price
		 FROM Cart c
		 JOIN Product p ON c.product_id = p.id
		 WHERE c.user_id = $1
		 ORDER BY c.id
		 FOR UPDATE OF c`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	defer rows.Close()

	var entries []models.PricedCartEntry
	for rows.Next() {
		var e models.PricedCartEntry
		if err := rows.Scan(&e.CartEntryID, &e.ProductID, &e.Quantity, &e.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan priced cart entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}

// clearCartEntries deletes exactly the given entries of userID and fails if
// any of them has already disappeared.
func clearCartEntries(ctx context.Context, tx *sql.Tx, userID int64, entryIDs []int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM Cart WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(entryIDs))
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected != int64(len(entryIDs)) {
		return fmt.Errorf("clear cart: removed %d of %d entries", rowsAffected, len(entryIDs))
	}

	return nil
}
