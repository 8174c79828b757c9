package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
)

func CreateReview(ctx context.Context, db *sql.DB, productID int64, text string) (*models.Review, error) {
	review := &models.Review{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO Review (product_id, text_review)
			 VALUES ($1, $2)
			 RETURNING id, product_id, text_review`,
			productID, text).Scan(&review.ID, &review.ProductID, &review.Text)
		if err != nil {
			return fmt.Errorf("create review: %w", database.TranslateError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// ListReviews joins reviews to their product; reviews without a product are
// left out.
func ListReviews(ctx context.Context, db *sql.DB) ([]models.ReviewView, error) {
	query := `
		SELECT r.id, p.name, r.text_review
		FROM Review r
		JOIN Product p ON r.product_id = p.id
		ORDER BY r.id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.ReviewView{}
	for rows.Next() {
		var r models.ReviewView
		if err := rows.Scan(&r.ID, &r.ProductName, &r.Text); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reviews, nil
}
