package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
	"github.com/safar/go-sql-storefront/internal/store"
)

// MaxCartQuantity bounds a single cart entry.
const MaxCartQuantity = 1000

type CartService struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewCartService(db *sql.DB, log zerolog.Logger) *CartService {
	return &CartService{db: db, log: log.With().Str("svc", "cart").Logger()}
}

func (s *CartService) ViewCart(ctx context.Context, userID int64) ([]models.CartLine, error) {
	lines, err := store.ListCart(ctx, s.db, userID)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "view cart failed")
		return nil, err
	}
	return lines, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID int64, quantity int) (*models.CartEntry, error) {
	l := logger(ctx, &s.log).With().
		Str("op", "add_to_cart").
		Int64("user_id", userID).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Logger()

	if quantity < 1 || quantity > MaxCartQuantity {
		err := fmt.Errorf("%w: must be between 1 and %d, got %d", database.ErrInvalidQuantity, MaxCartQuantity, quantity)
		logFailure(&l, err, "add to cart rejected")
		return nil, err
	}

	entry, err := store.AddCartEntry(ctx, s.db, userID, productID, quantity)
	if err != nil {
		logFailure(&l, err, "add to cart failed")
		return nil, err
	}

	l.Debug().Int64("cart_entry_id", entry.ID).Msg("added to cart")
	return entry, nil
}

// RemoveFromCart deletes an entry only when userID owns it.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, entryID int64) error {
	l := logger(ctx, &s.log).With().
		Str("op", "remove_from_cart").
		Int64("user_id", userID).
		Int64("cart_entry_id", entryID).
		Logger()

	if err := store.RemoveCartEntry(ctx, s.db, userID, entryID); err != nil {
		logFailure(&l, err, "remove from cart failed")
		return err
	}

	l.Debug().Msg("removed from cart")
	return nil
}
