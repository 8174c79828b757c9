// Package cli is the interactive menu in front of the storefront services.
// It only collects input and renders results; every rule lives in the
// services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/models"
)

const maxLoginAttempts = 3

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.Principal, error)
	ListUsers(ctx context.Context, p models.Principal) ([]models.User, error)
}

type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	ListReviews(ctx context.Context) ([]models.ReviewView, error)
	AddReview(ctx context.Context, productID int64, text string) (*models.Review, error)
}

type Cart interface {
	ViewCart(ctx context.Context, userID int64) ([]models.CartLine, error)
	AddToCart(ctx context.Context, userID, productID int64, quantity int) (*models.CartEntry, error)
	RemoveFromCart(ctx context.Context, userID, entryID int64) error
}

type Orders interface {
	Checkout(ctx context.Context, userID int64, shipping models.ShippingDetails) (*models.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]models.OrderSummary, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error)
	ListOrderLineItems(ctx context.Context, userID, orderID int64) ([]models.OrderLineView, error)
}

type Services struct {
	Auth    Authenticator
	Catalog Catalog
	Cart    Cart
	Orders  Orders
}

// ErrLoginFailed ends a session after too many rejected logins.
var ErrLoginFailed = errors.New("too many failed login attempts")

// Session is one interactive login. It keeps nothing between calls except
// the authenticated principal.
type Session struct {
	svc       Services
	in        io.Reader
	lines     chan string
	readErr   error
	out       io.Writer
	log       zerolog.Logger
	principal models.Principal
	commands  []command
}

func NewSession(svc Services, in io.Reader, out io.Writer, log zerolog.Logger) *Session {
	s := &Session{
		svc: svc,
		in:  in,
		out: out,
		log: log.With().Str("session_id", uuid.NewString()).Logger(),
	}
	s.commands = s.buildCommands()
	return s
}

// Run logs the user in and serves menu selections until the user exits,
// input ends or ctx is cancelled. A pending prompt gives up as soon as ctx is
// done. Only a store outage or a failed login is returned as an error.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.startReader(done)

	if err := s.login(s.log.WithContext(ctx)); err != nil {
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		return err
	}
	ctx = s.log.WithContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		s.printMenu()
		choice, err := s.prompt(ctx, "Enter your choice")
		if err != nil {
			return nil
		}

		if choice == "0" {
			s.println("Goodbye!")
			return nil
		}

		cmd, ok := s.lookup(choice)
		if !ok {
			s.println("Invalid choice. Please try again.")
			continue
		}

		if err := cmd.run(ctx); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			if database.IsUnavailable(err) {
				s.println("The store is unavailable. Ending session.")
				return err
			}
			s.report(err)
		}
	}
}

func (s *Session) login(ctx context.Context) error {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		username, err := s.prompt(ctx, "Username")
		if err != nil {
			return err
		}
		password, err := s.prompt(ctx, "Password")
		if err != nil {
			return err
		}

		p, err := s.svc.Auth.Authenticate(ctx, username, password)
		if err == nil {
			s.principal = p
			s.log = s.log.With().Int64("user_id", p.UserID).Logger()
			s.printf("Welcome, %s (%s).\n", p.Username, p.Role)
			return nil
		}

		switch {
		case database.IsUnavailable(err):
			s.println("The store is unavailable.")
			return err
		case errors.Is(err, database.ErrNotFound),
			errors.Is(err, database.ErrInvalidCredential),
			errors.Is(err, database.ErrInvalidInput):
			s.println("Invalid username or password.")
		default:
			s.println("Login failed. Please try again.")
		}
	}

	return ErrLoginFailed
}

func (s *Session) report(err error) {
	switch {
	case errors.Is(err, database.ErrEmptyCart):
		s.println("Your cart is empty.")
	case errors.Is(err, database.ErrForbidden):
		s.println("You are not allowed to do that.")
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrInvalidInput),
		errors.Is(err, database.ErrInvalidQuantity):
		s.printf("Error: %v\n", err)
	case errors.Is(err, database.ErrOrderPersistence):
		s.println("The order could not be saved. Nothing was charged and your cart is unchanged.")
	default:
		s.println("Something went wrong. Please try again.")
	}
}

// startReader feeds input lines to prompt from a goroutine, so a blocked
// read never holds up cancellation.
func (s *Session) startReader(done <-chan struct{}) {
	s.lines = make(chan string)
	go func() {
		defer close(s.lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case s.lines <- sc.Text():
			case <-done:
				return
			}
		}
		s.readErr = sc.Err()
	}()
}

func (s *Session) prompt(ctx context.Context, label string) (string, error) {
	s.printf("%s: ", label)
	select {
	case <-ctx.Done():
		s.println()
		return "", ctx.Err()
	case text, ok := <-s.lines:
		if !ok {
			if s.readErr != nil {
				return "", s.readErr
			}
			return "", io.EOF
		}
		return strings.TrimSpace(text), nil
	}
}

func (s *Session) promptID(ctx context.Context, label string) (int64, error) {
	raw, err := s.prompt(ctx, label)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", database.ErrInvalidInput, raw)
	}
	return id, nil
}

func (s *Session) promptQuantity(ctx context.Context, label string) (int, error) {
	raw, err := s.prompt(ctx, label)
	if err != nil {
		return 0, err
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive whole number", database.ErrInvalidQuantity, raw)
	}
	return q, nil
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}
