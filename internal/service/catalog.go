package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/models"
	"github.com/safar/go-sql-storefront/internal/store"
)

type CatalogService struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewCatalogService(db *sql.DB, log zerolog.Logger) *CatalogService {
	return &CatalogService{db: db, log: log.With().Str("svc", "catalog").Logger()}
}

type reviewInput struct {
	ProductID int64  `validate:"gt=0"`
	Text      string `validate:"required,max=2000"`
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := store.ListProducts(ctx, s.db)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "list products failed")
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := store.GetProduct(ctx, s.db, productID)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "get product failed")
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) ListReviews(ctx context.Context) ([]models.ReviewView, error) {
	reviews, err := store.ListReviews(ctx, s.db)
	if err != nil {
		logFailure(logger(ctx, &s.log), err, "list reviews failed")
		return nil, err
	}
	return reviews, nil
}

// AddReview stores an anonymous review. Unknown products fail with
// ErrProductNotFound and leave the reviews untouched.
func (s *CatalogService) AddReview(ctx context.Context, productID int64, text string) (*models.Review, error) {
	l := logger(ctx, &s.log).With().Str("op", "add_review").Int64("product_id", productID).Logger()

	in := reviewInput{ProductID: productID, Text: strings.TrimSpace(text)}
	if err := validate.Struct(in); err != nil {
		err = validationError(err)
		logFailure(&l, err, "add review rejected")
		return nil, err
	}

	review, err := store.CreateReview(ctx, s.db, in.ProductID, in.Text)
	if err != nil {
		logFailure(&l, err, "add review failed")
		return nil, err
	}

	l.Debug().Int64("review_id", review.ID).Msg("review added")
	return review, nil
}
