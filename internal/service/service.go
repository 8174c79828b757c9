// Package service holds the storefront operations the presentation layer
// calls: authentication, catalog, cart and orders. Each call is one
// self-contained unit of work against the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/database"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError folds validator output into ErrInvalidInput with the
// offending fields listed.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", database.ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", database.ErrInvalidInput, strings.Join(fields, ", "))
}

// logger prefers the session logger carried by ctx.
func logger(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}

// logFailure logs err at warn for caller mistakes and at error for faults.
func logFailure(l *zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrInvalidInput),
		errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, database.ErrInvalidCredential),
		errors.Is(err, database.ErrForbidden):
		l.Warn().Err(err).Msg(msg)
	default:
		l.Error().Err(err).Msg(msg)
	}
}
