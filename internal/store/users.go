package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
)

// CreateUser provisions a user. passwordHash must already be hashed.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, email string, isAdmin bool) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO "User" (username, password_hash, email, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, email, is_admin`

	err := db.QueryRowContext(ctx, query, username, passwordHash, email, isAdmin).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.IsAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", database.TranslateError(err))
	}

	return user, nil
}

// GetUserByUsername is the credential lookup used by authentication; it is
// the only read that returns the password hash.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, username, password_hash, email, is_admin
		FROM "User"
		WHERE username = $1`

	err := db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

func ListUsers(ctx context.Context, db *sql.DB) ([]models.User, error) {
	query := `
		SELECT id, username, email, is_admin
		FROM "User"
		ORDER BY id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.IsAdmin,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

// lockUser takes a row lock on the user for the rest of tx. Cart inserts for
// the same user wait on it through their foreign key check.
func lockUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM "User" WHERE id = $1 FOR UPDATE`,
		userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.ErrUserNotFound
		}
		return fmt.Errorf("lock user %d: %w", userID, err)
	}
	return nil
}
