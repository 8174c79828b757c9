package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
	"github.com/safar/go-sql-storefront/internal/store"
)

type OrderService struct {
	db         *sql.DB
	log        zerolog.Logger
	maxRetries int
}

func NewOrderService(db *sql.DB, log zerolog.Logger, maxRetries int) *OrderService {
	return &OrderService{
		db:         db,
		log:        log.With().Str("svc", "order").Logger(),
		maxRetries: maxRetries,
	}
}

// Checkout turns the user's cart into an order. An empty cart ends the call
// with ErrEmptyCart before the shipping fields are looked at; otherwise the
// fields are validated before the order is written. Address line 2 is
// optional.
func (s *OrderService) Checkout(ctx context.Context, userID int64, shipping models.ShippingDetails) (*models.Order, error) {
	l := logger(ctx, &s.log).With().Str("op", "checkout").Int64("user_id", userID).Logger()

	lines, err := store.ListCart(ctx, s.db, userID)
	if err != nil {
		logFailure(&l, err, "checkout failed")
		return nil, err
	}
	if len(lines) == 0 {
		l.Info().Msg("checkout skipped: cart is empty")
		return nil, database.ErrEmptyCart
	}

	shipping = normalizeShipping(shipping)
	if err := validate.Struct(shipping); err != nil {
		err = validationError(err)
		logFailure(&l, err, "checkout rejected")
		return nil, err
	}

	order, err := store.CreateOrderFromCart(ctx, s.db, userID, shipping, s.maxRetries)
	if err != nil {
		if errors.Is(err, database.ErrEmptyCart) {
			l.Info().Msg("checkout skipped: cart is empty")
			return nil, err
		}
		logFailure(&l, err, "checkout failed")
		return nil, err
	}

	l.Info().
		Int64("order_id", order.ID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("line_items", len(order.Items)).
		Msg("order created")
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.OrderSummary, error) {
	orders, err := store.ListOrders(ctx, s.db, userID)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "list orders failed")
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := store.GetOrder(ctx, s.db, userID, orderID)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "get order failed")
		return nil, err
	}
	return order, nil
}

// ListOrderLineItems fails with ErrOrderNotFound unless userID owns the order.
func (s *OrderService) ListOrderLineItems(ctx context.Context, userID, orderID int64) ([]models.OrderLineView, error) {
	lines, err := store.ListOrderLineItems(ctx, s.db, userID, orderID)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "list order line items failed")
		return nil, err
	}
	return lines, nil
}

func normalizeShipping(s models.ShippingDetails) models.ShippingDetails {
	return models.ShippingDetails{
		Name:     strings.TrimSpace(s.Name),
		Email:    strings.TrimSpace(s.Email),
		Address:  strings.TrimSpace(s.Address),
		Address2: strings.TrimSpace(s.Address2),
		City:     strings.TrimSpace(s.City),
		State:    strings.TrimSpace(s.State),
		ZipCode:  strings.TrimSpace(s.ZipCode),
		Country:  strings.TrimSpace(s.Country),
	}
}
