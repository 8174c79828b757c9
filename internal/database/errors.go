package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure:
			return ErrorClassSerialization
		case codeDeadlockDetected:
			return ErrorClassDeadlock
		case codeLockNotAvailable:
			return ErrorClassTransient
		case codeUniqueViolation, codeForeignKeyViolation, codeNotNullViolation, codeCheckViolation:
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

var (
	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound   = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrCartEntryNotFound = fmt.Errorf("cart entry %w", ErrNotFound)

	ErrInvalidCredential    = errors.New("invalid credential")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrDuplicate            = errors.New("duplicate value")
	ErrOrderPersistence     = errors.New("order persistence failure")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrForbidden            = errors.New("forbidden")
	ErrLockTimeout          = errors.New("lock timeout")
)

// constraintNotFound maps a foreign key constraint to the entity that was
// missing when it fired.
var constraintNotFound = map[string]error{
	"fk_cart_user":             ErrUserNotFound,
	"fk_cart_product":          ErrProductNotFound,
	"fk_orders_user":           ErrUserNotFound,
	"fk_order_details_order":   ErrOrderNotFound,
	"fk_order_details_product": ErrProductNotFound,
	"fk_review_product":        ErrProductNotFound,
}

// TranslateError turns driver errors the callers can act on into sentinel
// errors. Anything else is returned unchanged.
func TranslateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case codeForeignKeyViolation:
		if missing, ok := constraintNotFound[pqErr.Constraint]; ok {
			return fmt.Errorf("%w: %w", missing, ErrReferentialIntegrity)
		}
		return fmt.Errorf("%w: %s", ErrReferentialIntegrity, pqErr.Constraint)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	case codeLockNotAvailable:
		return ErrLockTimeout
	}

	return err
}

// IsUnavailable reports whether err means the store cannot be reached: a
// failed connect, a dropped connection or a server shutdown.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
		return pqErr.Code.Class() == "08"
	}

	var netErr *net.OpError
	return errors.As(err, &netErr)
}
