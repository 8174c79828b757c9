package store_test

import (
	"context"
	"testing"

	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/pgtest"
	"github.com/safar/go-sql-storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsEmpty(t *testing.T) {
	db := pgtest.New(t)

	products, err := store.ListProducts(context.Background(), db.DB)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductsRoundTripPrice(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	a := createProduct(t, db, "Widget", "5.00")
	createProduct(t, db, "Gadget", "3.10")

	got, err := store.GetProduct(ctx, db.DB, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("5")))

	products, err := store.ListProducts(ctx, db.DB)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, "Gadget", products[1].Name)

	_, err = store.GetProduct(ctx, db.DB, a.ID+100)
	assert.ErrorIs(t, err, database.ErrProductNotFound)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	db := pgtest.New(t)

	_, err := store.CreateProduct(context.Background(), db.DB, "Broken", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, database.ErrInvalidInput)
	assert.Zero(t, db.Count(t, "Product"))
}
