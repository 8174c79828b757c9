package store_test

import (
	"context"
	"testing"

	"github.com/safar/go-sql-storefront/internal/models"
	"github.com/safar/go-sql-storefront/internal/pgtest"
	"github.com/safar/go-sql-storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, db *pgtest.DB, username string) *models.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), db.DB, username, "$2a$04$notarealhashnotarealhashnotarealhashnotarealhashnotare", username+"@example.com", false)
	require.NoError(t, err)
	return user
}

func createProduct(t *testing.T, db *pgtest.DB, name, price string) *models.Product {
	t.Helper()

	product, err := store.CreateProduct(context.Background(), db.DB, name, decimal.RequireFromString(price))
	require.NoError(t, err)
	return product
}

func testShipping() models.ShippingDetails {
	return models.ShippingDetails{
		Name:    "Ann Example",
		Email:   "ann@example.com",
		Address: "1 Main St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62701",
		Country: "US",
	}
}
