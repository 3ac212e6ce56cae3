// Command import-cards loads a card CSV export into the postgres cards table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	batchSize  = flag.Int("batch", 500, "cards per transaction")
	verbose    = flag.Bool("v", false, "log every batch")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	csvPath := cfg.Cards.CSVPath
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== HSPP Card Data Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		log.Fatalf("CSV file not found: %s", absPath)
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}
	defer logger.Sync()

	// DATABASE_URL wins over the configured url, matching the usual tooling.
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = cfg.Database.URL
	}

	fmt.Printf("Connecting to database...\n")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("Database connection established")

	all, err := cards.LoadCSVFile(absPath, logger)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(all) == 0 {
		log.Fatal("CSV file is empty or has no data rows")
	}
	fmt.Printf("Found %d cards in CSV\n", len(all))

	if err := cards.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	start := time.Now()
	result, err := cards.SaveCards(ctx, pool, all, *batchSize, logger)
	if err != nil {
		log.Fatalf("Import aborted after %d cards: %v", result.Imported, err)
	}

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("Imported: %d\n", result.Imported)
	fmt.Printf("Failed:   %d\n", result.Failed)
	fmt.Printf("Duration: %s\n", time.Since(start).Round(time.Millisecond))

	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM cards").Scan(&total); err != nil {
		log.Printf("Warning: failed to count cards: %v", err)
		return
	}
	fmt.Printf("Cards in database: %d\n", total)
}
