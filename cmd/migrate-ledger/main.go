package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/quikeats/Vouchy/internal/adapter/filestore"
	"github.com/quikeats/Vouchy/internal/adapter/redisstore"
	"github.com/quikeats/Vouchy/internal/adapter/sqlitestore"
	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/platform/config"
)

func main() {
	var (
		from         = flag.String("from", config.BackendFile, "Source backend: file, sqlite or redis")
		fromLocation = flag.String("from-location", os.Getenv("LEDGER_PATH"), "Source path or Redis URL (or set LEDGER_PATH env)")
		to           = flag.String("to", config.BackendSQLite, "Destination backend: file, sqlite or redis")
		toLocation   = flag.String("to-location", "", "Destination path or Redis URL")
		dryRun       = flag.Bool("dry-run", false, "Dry run mode (don't write to the destination)")
		verbose      = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *fromLocation == "" {
		log.Fatal("Source location required (--from-location or LEDGER_PATH env)")
	}
	if *toLocation == "" {
		log.Fatal("Destination location required (--to-location)")
	}
	if *from == *to && *fromLocation == *toLocation {
		log.Fatal("Source and destination are identical, nothing to migrate")
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	src, err := openStore(ctx, *from, *fromLocation)
	if err != nil {
		log.Fatalf("Failed to open source store: %v", err)
	}
	defer src.Close()
	slog.Info("Source store opened", "backend", *from, "location", sanitizeLocation(*fromLocation))

	dst, err := openStore(ctx, *to, *toLocation)
	if err != nil {
		log.Fatalf("Failed to open destination store: %v", err)
	}
	defer dst.Close()
	slog.Info("Destination store opened", "backend", *to, "location", sanitizeLocation(*toLocation))

	// Run migration
	if err := migrateLedger(ctx, src, dst, *dryRun); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	slog.Info("Migration complete")
}

func migrateLedger(ctx context.Context, src, dst domain.LedgerStore, dryRun bool) error {
	start := time.Now()

	slog.Info("Starting migration", "dry_run", dryRun)

	totals, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load source ledger: %w", err)
	}

	var totalPoints int64
	for userID, points := range totals {
		slog.Debug("Read ledger entry", "user_id", userID, "points", points)
		totalPoints += points
	}

	if !dryRun {
		if err := dst.Save(ctx, totals); err != nil {
			return fmt.Errorf("failed to save destination ledger: %w", err)
		}
	}

	duration := time.Since(start)
	slog.Info("Migration summary",
		"users", len(totals),
		"total_points", totalPoints,
		"duration_ms", duration.Milliseconds())

	// Verify destination contents
	if !dryRun {
		written, err := dst.Load(ctx)
		if err != nil {
			return fmt.Errorf("destination verification failed: %w", err)
		}
		slog.Info("Destination verification",
			"size", len(written),
			"expected", len(totals))
		if len(written) != len(totals) {
			slog.Warn("Destination size mismatch",
				"expected", len(totals),
				"actual", len(written))
		}
	}

	return nil
}

func openStore(ctx context.Context, backend, location string) (domain.LedgerStore, error) {
	switch backend {
	case config.BackendFile:
		return filestore.New(location), nil
	case config.BackendSQLite:
		return sqlitestore.New(location)
	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, location)
		if err != nil {
			return nil, err
		}
		return redisstore.New(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, backend)
	}
}

func sanitizeLocation(location string) string {
	// Hide password in Redis URL for logging
	if strings.Contains(location, "@") {
		parts := strings.Split(location, "@")
		if len(parts) == 2 {
			credParts := strings.Split(parts[0], ":")
			if len(credParts) >= 2 {
				return credParts[0] + ":***@" + parts[1]
			}
		}
	}
	return location
}
