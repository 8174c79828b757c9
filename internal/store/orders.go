package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
	"github.com/shopspring/decimal"
)

// CreateOrderFromCart converts the user's cart into an order in one
// transaction: price the cart, insert the order header, insert one line item
// per cart entry at the price read, then delete the priced entries.
//
// The user row is locked first, so two checkouts for the same user run one
// after the other and cart inserts made meanwhile wait for the commit. An
// empty cart returns ErrEmptyCart without writing anything. Any other failure
// rolls the whole transaction back and is reported as ErrOrderPersistence.
func CreateOrderFromCart(ctx context.Context, db *sql.DB, userID int64, shipping models.ShippingDetails, maxRetries int) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		MaxRetries:     maxRetries,
	}, func(tx *sql.Tx) error {
		order = nil

		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		entries, err := priceCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return database.ErrEmptyCart
		}

		totalAmount := decimal.Zero
		entryIDs := make([]int64, 0, len(entries))
		for _, e := range entries {
			totalAmount = totalAmount.Add(e.Subtotal())
			entryIDs = append(entryIDs, e.CartEntryID)
		}

		orderID, err := insertOrder(ctx, tx, userID, shipping, totalAmount)
		if err != nil {
			return err
		}

		items, err := insertOrderLineItems(ctx, tx, orderID, entries)
		if err != nil {
			return err
		}

		if err := clearCartEntries(ctx, tx, userID, entryIDs); err != nil {
			return err
		}

		order = &models.Order{
			ID:          orderID,
			UserID:      userID,
			Shipping:    shipping,
			TotalAmount: totalAmount,
			Paid:        false,
			Items:       items,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, database.ErrEmptyCart) ||
			errors.Is(err, database.ErrNotFound) ||
			errors.Is(err, database.ErrOrderPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", database.ErrOrderPersistence, err)
	}

	return order, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, userID int64, s models.ShippingDetails, total decimal.Decimal) (int64, error) {
	address2 := sql.NullString{String: s.Address2, Valid: s.Address2 != ""}

	var orderID int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO Orders (user_id, name, email, address, address2, city, state, zip_code, country, total_amount, paid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		 RETURNING id`,
		userID, s.Name, s.Email, s.Address, address2, s.City, s.State, s.ZipCode, s.Country, total).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	return orderID, nil
}

func insertOrderLineItems(ctx context.Context, tx *sql.Tx, orderID int64, entries []models.PricedCartEntry) ([]models.OrderLineItem, error) {
	items := make([]models.OrderLineItem, 0, len(entries))

	for _, e := range entries {
		item := models.OrderLineItem{
			OrderID:   orderID,
			ProductID: e.ProductID,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO OrderDetails (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			orderID, e.ProductID, e.Quantity, e.UnitPrice).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("create order line item: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}

// GetOrder returns the header of an order owned by userID. Orders of other
// users are reported as not found.
func GetOrder(ctx context.Context, db *sql.DB, userID, orderID int64) (*models.Order, error) {
	order := &models.Order{}
	var address2 sql.NullString

	query := `
		SELECT id, user_id, name, email, address, address2, city, state, zip_code, country, total_amount, paid
		FROM Orders
		WHERE id = $1 AND user_id = $2`

	err := db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Shipping.Name,
		&order.Shipping.Email,
		&order.Shipping.Address,
		&address2,
		&order.Shipping.City,
		&order.Shipping.State,
		&order.Shipping.ZipCode,
		&order.Shipping.Country,
		&order.TotalAmount,
		&order.Paid,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.Shipping.Address2 = address2.String

	return order, nil
}

func ListOrders(ctx context.Context, db *sql.DB, userID int64) ([]models.OrderSummary, error) {
	query := `
		SELECT id, total_amount, paid, name, city, state
		FROM Orders
		WHERE user_id = $1
		ORDER BY id`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.OrderSummary{}
	for rows.Next() {
		var o models.OrderSummary
		err := rows.Scan(
			&o.ID,
			&o.TotalAmount,
			&o.Paid,
			&o.Name,
			&o.City,
			&o.State,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// ListOrderLineItems returns the line items of an order owned by userID. The
// ownership check and the read share one read-only transaction.
func ListOrderLineItems(ctx context.Context, db *sql.DB, userID, orderID int64) ([]models.OrderLineView, error) {
	lines := []models.OrderLineView{}

	err := database.WithTransaction(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelRepeatableRead,
		ReadOnly:       true,
	}, func(tx *sql.Tx) error {
		var owned bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM Orders WHERE id = $1 AND user_id = $2)`,
			orderID, userID).Scan(&owned)
		if err != nil {
			return fmt.Errorf("check order owner: %w", err)
		}
		if !owned {
			return database.ErrOrderNotFound
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT p.name, d.quantity, d.price
			 FROM OrderDetails d
			 JOIN Product p ON d.product_id = p.id
			 WHERE d.order_id = $1
			 ORDER BY d.id`,
			orderID)
		if err != nil {
			return fmt.Errorf("list order line items: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var line models.OrderLineView
			if err := rows.Scan(&line.ProductName, &line.Quantity, &line.UnitPrice); err != nil {
				return fmt.Errorf("scan order line item: %w", err)
			}
			lines = append(lines, line)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return lines, nil
}
