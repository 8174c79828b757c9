package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/hash"
	"github.com/safar/go-sql-storefront/internal/models"
	"github.com/safar/go-sql-storefront/internal/store"
)

type AuthService struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewAuthService(db *sql.DB, log zerolog.Logger) *AuthService {
	return &AuthService{db: db, log: log.With().Str("svc", "auth").Logger()}
}

// Authenticate looks up username and compares password against the stored
// bcrypt hash. It returns ErrUserNotFound for an unknown user and
// ErrInvalidCredential for a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.Principal, error) {
	username = strings.TrimSpace(username)
	l := logger(ctx, &s.log).With().Str("op", "authenticate").Str("username", username).Logger()

	if username == "" || password == "" {
		return models.Principal{}, fmt.Errorf("%w: username and password are required", database.ErrInvalidInput)
	}

	user, err := store.GetUserByUsername(ctx, s.db, username)
	if err != nil {
		logFailure(&l, err, "login failed")
		return models.Principal{}, err
	}

	ok, err := hash.CheckPassword(user.PasswordHash, password)
	if err != nil {
		l.Error().Err(err).Msg("stored credential is unusable")
		return models.Principal{}, database.ErrInvalidCredential
	}
	if !ok {
		l.Warn().Msg("login failed: wrong credential")
		return models.Principal{}, database.ErrInvalidCredential
	}

	p := models.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     models.RoleFromAdminFlag(user.IsAdmin),
	}
	l.Info().Int64("user_id", p.UserID).Str("role", string(p.Role)).Msg("login succeeded")
	return p, nil
}

// ListUsers is restricted to administrators.
func (s *AuthService) ListUsers(ctx context.Context, p models.Principal) ([]models.User, error) {
	l := logger(ctx, &s.log).With().Str("op", "list_users").Int64("user_id", p.UserID).Logger()

	if !p.IsAdmin() {
		logFailure(&l, database.ErrForbidden, "list users denied")
		return nil, database.ErrForbidden
	}

	users, err := store.ListUsers(ctx, s.db)
	if err != nil {
		logFailure(&l, err, "list users failed")
		return nil, err
	}
	return users, nil
}
