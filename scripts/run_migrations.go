package main

import (
	"log"
	"os"

	"github.com/safar/go-sql-storefront/internal/config"
	"github.com/safar/go-sql-storefront/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	direction := database.Direction(os.Args[1])
	if err := database.Migrate(cfg.Database.URL, direction); err != nil {
		log.Fatalf("Run migrations %s: %v", direction, err)
	}

	log.Printf("Successfully ran migrations %s", direction)
}
