package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/safar/go-sql-storefront/internal/cli"
	"github.com/safar/go-sql-storefront/internal/config"
	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/logging"
	"github.com/safar/go-sql-storefront/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.URL, database.Up); err != nil {
			logger.Fatal().Err(err).Msg("Run migrations")
		}
	}

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Connect to database")
	}
	defer db.Close()

	logger.Info().Msg("Connected to database successfully")

	svc := cli.Services{
		Auth:    service.NewAuthService(db, logger),
		Catalog: service.NewCatalogService(db, logger),
		Cart:    service.NewCartService(db, logger),
		Orders:  service.NewOrderService(db, logger, cfg.Checkout.MaxRetries),
	}

	session := cli.NewSession(svc, os.Stdin, os.Stdout, logger)
	if err := session.Run(ctx); err != nil {
		ev := logger.Error()
		if errors.Is(err, cli.ErrLoginFailed) {
			ev = logger.Warn()
		}
		ev.Err(err).Msg("Session ended")
		db.Close()
		os.Exit(1)
	}
}
