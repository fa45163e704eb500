//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"order-service/internal/config"
	"order-service/internal/database"
)

// test_db_connection connects with the service's DB_* settings, applies the
// schema and reports how many orders are stored.
//
//	go run scripts/test_db_connection.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	var dbName string
	var orders int64
	err = pool.QueryRow(ctx, "SELECT current_database(), (SELECT COUNT(*) FROM orders)").Scan(&dbName, &orders)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s (%d orders)\n", dbName, orders)
}
