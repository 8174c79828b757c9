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

func CreateProduct(ctx context.Context, db *sql.DB, name string, price decimal.Decimal) (*models.Product, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", database.ErrInvalidInput)
	}

	product := &models.Product{}

	query := `
		INSERT INTO Product (name, price)
		VALUES ($1, $2)
		RETURNING id, name, price`

	err := db.QueryRowContext(ctx, query, name, price).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", database.TranslateError(err))
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, price
		FROM Product
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func ListProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	query := `
		SELECT id, name, price
		FROM Product
		ORDER BY id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
