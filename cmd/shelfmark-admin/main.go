// Package main provides the Shelfmark admin CLI for user management and
// maintenance tasks against the configured database.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/config"
	"github.com/prn-tf/shelfmark/internal/repository"
	"github.com/prn-tf/shelfmark/internal/repository/postgres"
	"github.com/prn-tf/shelfmark/internal/repository/sqlite"
	"github.com/prn-tf/shelfmark/internal/service"
	"github.com/prn-tf/shelfmark/internal/token"
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
	case "create-user":
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, "usage: shelfmark-admin create-user <username> <password>")
			os.Exit(1)
		}
		runCreateUser(os.Args[2], os.Args[3])
	case "list-users":
		runListUsers()
	case "ping":
		runPing()
	case "version":
		fmt.Printf("shelfmark-admin %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shelfmark-admin - Shelfmark administration tool

Usage:
  shelfmark-admin <command> [arguments]

Commands:
  create-user <username> <password>   Create a new user account
  list-users                          List all user accounts
  ping                                Check database connectivity
  version                             Print version information
  help                                Show this help

Configuration is read from SHELFMARK_CONFIG (path to a YAML file) and
SHELFMARK_* environment variables.`)
}

func runCreateUser(username, password string) {
	ctx, cfg, repos, db := setup()
	defer db.Close()

	tokens := token.NewManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authService := service.NewAuthService(repos.User, tokens, zerolog.Nop())

	err := authService.Register(ctx, service.RegisterInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("user %q created\n", username)
}

func runListUsers() {
	ctx, _, repos, db := setup()
	defer db.Close()

	users, err := repos.User.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list users: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
}

func runPing() {
	ctx, _, _, db := setup()
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "database unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("database OK")
}

// setup loads configuration and opens the configured database.
func setup() (context.Context, *config.Config, *repository.Repositories, repository.Database) {
	ctx := context.Background()
	cfg := config.MustLoad(os.Getenv("SHELFMARK_CONFIG"))
	logger := zerolog.Nop()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "postgres init failed: %v\n", err)
			os.Exit(1)
		}
		return ctx, cfg, postgres.NewRepositories(db), db

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
		return ctx, cfg, sqlite.NewRepositories(db), db

	default:
		fmt.Fprintf(os.Stderr, "unsupported database driver: %q\n", cfg.Database.Driver)
		os.Exit(1)
		return nil, nil, nil, nil
	}
}
