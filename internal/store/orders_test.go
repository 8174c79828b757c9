package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/pgtest"
	"github.com/safar/go-sql-storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderFromCart(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "ann")
	productA := createProduct(t, db, "Product A", "5.00")
	productB := createProduct(t, db, "Product B", "3.00")

	_, err := store.AddCartEntry(ctx, db.DB, user.ID, productA.ID, 2)
	require.NoError(t, err)
	_, err = store.AddCartEntry(ctx, db.DB, user.ID, productB.ID, 1)
	require.NoError(t, err)

	shipping := testShipping()
	shipping.Address2 = "Apt 4"

	order, err := store.CreateOrderFromCart(ctx, db.DB, user.ID, shipping, 3)
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("13.00")), "total %s", order.TotalAmount)
	assert.False(t, order.Paid)
	require.Len(t, order.Items, 2)

	lines, err := store.ListOrderLineItems(ctx, db.DB, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Product A", lines[0].ProductName)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, "Product B", lines[1].ProductName)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.True(t, lines[1].UnitPrice.Equal(decimal.RequireFromString("3.00")))

	cart, err := store.ListCart(ctx, db.DB, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	stored, err := store.GetOrder(ctx, db.DB, user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, shipping, stored.Shipping)
	assert.True(t, stored.TotalAmount.Equal(order.TotalAmount))
}

func TestCreateOrderFromCartTotalMatchesLineItems(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "ann")
	prices := []string{"0.99", "12.50", "7.33"}
	for i, p := range prices {
		product := createProduct(t, db, "P"+p, p)
		_, err := store.AddCartEntry(ctx, db.DB, user.ID, product.ID, i+1)
		require.NoError(t, err)
	}

	order, err := store.CreateOrderFromCart(ctx, db.DB, user.ID, testShipping(), 3)
	require.NoError(t, err)

	lines, err := store.ListOrderLineItems(ctx, db.DB, user.ID, order.ID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.True(t, sum.Equal(order.TotalAmount), "lines %s, total %s", sum, order.TotalAmount)
	assert.Equal(t, len(prices), db.Count(t, "OrderDetails"))
}

func TestCreateOrderFromEmptyCart(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "ann")

	_, err := store.CreateOrderFromCart(ctx, db.DB, user.ID, testShipping(), 3)
	assert.ErrorIs(t, err, database.ErrEmptyCart)
	assert.NotErrorIs(t, err, database.ErrOrderPersistence)

	assert.Zero(t, db.Count(t, "Orders"))
	assert.Zero(t, db.Count(t, "OrderDetails"))
}

func TestCreateOrderFromCartUnknownUser(t *testing.T) {
	db := pgtest.New(t)

	_, err := store.CreateOrderFromCart(context.Background(), db.DB, 4242, testShipping(), 3)
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}

func TestCreateOrderFromCartRollsBackOnLineItemFailure(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "ann")
	product := createProduct(t, db, "Widget", "5.00")
	_, err := store.AddCartEntry(ctx, db.DB, user.ID, product.ID, 2)
	require.NoError(t, err)

	db.FailInserts(t, "OrderDetails")

	_, err = store.CreateOrderFromCart(ctx, db.DB, user.ID, testShipping(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrOrderPersistence)

	assert.Zero(t, db.Count(t, "Orders"))
	assert.Zero(t, db.Count(t, "OrderDetails"))
	assert.Equal(t, 1, db.Count(t, "Cart"))
}

func TestCreateOrderFromCartFreezesPrice(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "ann")
	product := createProduct(t, db, "Widget", "5.00")
	_, err := store.AddCartEntry(ctx, db.DB, user.ID, product.ID, 1)
	require.NoError(t, err)

	order, err := store.CreateOrderFromCart(ctx, db.DB, user.ID, testShipping(), 3)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE Product SET price = 9.99 WHERE id = $1`, product.ID)
	require.NoError(t, err)

	lines, err := store.ListOrderLineItems(ctx, db.DB, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("5.00")))
}

func TestConcurrentCheckoutSameUser(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "ann")
	product := createProduct(t, db, "Widget", "5.00")
	_, err := store.AddCartEntry(ctx, db.DB, user.ID, product.ID, 3)
	require.NoError(t, err)

	concurrency := 5
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateOrderFromCart(ctx, db.DB, user.ID, testShipping(), 3)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	emptyCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, database.ErrEmptyCart):
			emptyCount++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount)
	assert.Equal(t, concurrency-1, emptyCount)
	assert.Equal(t, 1, db.Count(t, "Orders"))
	assert.Equal(t, 1, db.Count(t, "OrderDetails"))
}

func TestListOrdersScopedAndStable(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	ann := createUser(t, db, "ann")
	bob := createUser(t, db, "bob")
	product := createProduct(t, db, "Widget", "5.00")

	for i := 0; i < 3; i++ {
		_, err := store.AddCartEntry(ctx, db.DB, ann.ID, product.ID, i+1)
		require.NoError(t, err)
		_, err = store.CreateOrderFromCart(ctx, db.DB, ann.ID, testShipping(), 3)
		require.NoError(t, err)
	}

	first, err := store.ListOrders(ctx, db.DB, ann.ID)
	require.NoError(t, err)
	second, err := store.ListOrders(ctx, db.DB, ann.ID)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.True(t, first[2].TotalAmount.Equal(decimal.RequireFromString("15.00")))
	assert.Equal(t, "Springfield", first[0].City)

	others, err := store.ListOrders(ctx, db.DB, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestOrderReadsRejectOtherUsers(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	ann := createUser(t, db, "ann")
	bob := createUser(t, db, "bob")
	product := createProduct(t, db, "Widget", "5.00")

	_, err := store.AddCartEntry(ctx, db.DB, ann.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := store.CreateOrderFromCart(ctx, db.DB, ann.ID, testShipping(), 3)
	require.NoError(t, err)

	_, err = store.ListOrderLineItems(ctx, db.DB, bob.ID, order.ID)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)

	_, err = store.GetOrder(ctx, db.DB, bob.ID, order.ID)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
}
