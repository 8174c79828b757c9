// Command storeadmin provisions the storefront database: schema migrations,
// user accounts and catalog products.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/safar/go-sql-storefront/internal/config"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/hash"
	"github.com/safar/go-sql-storefront/internal/logging"
	"github.com/safar/go-sql-storefront/internal/store"
	"github.com/shopspring/decimal"
)

const usage = `Usage:
  storeadmin migrate up|down
  storeadmin useradd -username NAME -password PASS -email EMAIL [-admin]
  storeadmin productadd -name NAME -price PRICE`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	ctx := logger.WithContext(context.Background())

	switch os.Args[1] {
	case "migrate":
		err = runMigrate(cfg, os.Args[2:], logger)
	case "useradd":
		err = runUserAdd(ctx, cfg, os.Args[2:], logger)
	case "productadd":
		err = runProductAdd(ctx, cfg, os.Args[2:], logger)
	default:
		err = fmt.Errorf("unknown command %q\n%s", os.Args[1], usage)
	}

	if err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("storeadmin failed")
	}
}

func runMigrate(cfg *config.Config, args []string, logger zerolog.Logger) error {
	if len(args) != 1 {
		return errors.New(usage)
	}

	direction := database.Direction(args[0])
	if err := database.Migrate(cfg.Database.URL, direction); err != nil {
		return err
	}

	logger.Info().Str("direction", string(direction)).Msg("Migrations applied")
	return nil
}

func runUserAdd(ctx context.Context, cfg *config.Config, args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "plain-text password, stored as a bcrypt hash")
	email := fs.String("email", "", "contact email")
	admin := fs.Bool("admin", false, "grant the administrator role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*username) == "" || *password == "" || strings.TrimSpace(*email) == "" {
		return fmt.Errorf("%w: -username, -password and -email are required", database.ErrInvalidInput)
	}

	passwordHash, err := hash.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := store.CreateUser(ctx, db, strings.TrimSpace(*username), passwordHash, strings.TrimSpace(*email), *admin)
	if err != nil {
		return err
	}

	logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Bool("admin", user.IsAdmin).Msg("User created")
	return nil
}

func runProductAdd(ctx context.Context, cfg *config.Config, args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("productadd", flag.ContinueOnError)
	name := fs.String("name", "", "product name")
	priceStr := fs.String("price", "", "unit price, e.g. 19.99")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: -name is required", database.ErrInvalidInput)
	}

	price, err := decimal.NewFromString(*priceStr)
	if err != nil {
		return fmt.Errorf("%w: price %q: %v", database.ErrInvalidInput, *priceStr, err)
	}

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	product, err := store.CreateProduct(ctx, db, strings.TrimSpace(*name), price)
	if err != nil {
		return err
	}

	logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Str("price", product.Price.StringFixed(2)).Msg("Product created")
	return nil
}
