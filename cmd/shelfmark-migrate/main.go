// Package main provides the Shelfmark migration tool. It applies schema
// migrations to the configured database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/config"
	"github.com/prn-tf/shelfmark/internal/repository"
	"github.com/prn-tf/shelfmark/internal/repository/postgres"
	"github.com/prn-tf/shelfmark/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "up":
		runUp()
	case "ping":
		runPing()
	case "version":
		fmt.Printf("shelfmark-migrate %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shelfmark-migrate - Shelfmark database migration tool

Usage:
  shelfmark-migrate <command>

Commands:
  up        Apply all pending migrations
  ping      Check database connectivity
  version   Print version information
  help      Show this help

Configuration is read from SHELFMARK_CONFIG (path to a YAML file) and
SHELFMARK_* environment variables.`)
}

func runUp() {
	ctx, db := openDatabase()
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}

func runPing() {
	ctx, db := openDatabase()
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "database unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("database OK")
}

func openDatabase() (context.Context, repository.Database) {
	ctx := context.Background()
	cfg := config.MustLoad(os.Getenv("SHELFMARK_CONFIG"))
	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "postgres init failed: %v\n", err)
			os.Exit(1)
		}
		return ctx, db

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqlite init failed: %v\n", err)
			os.Exit(1)
		}
		return ctx, db

	default:
		fmt.Fprintf(os.Stderr, "unsupported database driver: %q\n", cfg.Database.Driver)
		os.Exit(1)
		return nil, nil
	}
}
