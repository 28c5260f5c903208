// Package main is the entry point for the Shelfmark server, a book-catalog
// management service with token-based authentication.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/shelfmark/internal/auth"
	memorycache "github.com/prn-tf/shelfmark/internal/cache/memory"
	rediscache "github.com/prn-tf/shelfmark/internal/cache/redis"
	"github.com/prn-tf/shelfmark/internal/config"
	"github.com/prn-tf/shelfmark/internal/handler"
	"github.com/prn-tf/shelfmark/internal/metrics"
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
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Shelfmark server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database and repositories
	repos, db, err := openRepositories(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	// Book read cache: Redis when enabled, in-process otherwise.
	var bookCache repository.Cache
	if cfg.Redis.Enabled {
		cache, err := rediscache.New(ctx, rediscache.Config{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		defer cache.Close()
		bookCache = cache
	} else {
		bookCache = memorycache.New()
	}

	bookRepo := repository.NewCachedBookRepository(repos.Book, bookCache, cfg.Redis.CacheTTL, logger)

	// Services
	tokens := token.NewManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authService := service.NewAuthService(repos.User, tokens, logger)
	bookService := service.NewBookService(bookRepo, logger)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(handler.AuthHandlerConfig{
		AuthService: authService,
		CookieName:  cfg.Auth.CookieName,
		TokenTTL:    cfg.Auth.TokenTTL,
		Logger:      logger,
	})
	bookHandler := handler.NewBookHandler(bookService, logger)

	authMiddleware := auth.Middleware(tokens, auth.Config{
		CookieName: cfg.Auth.CookieName,
		SkipPaths:  []string{"/health"},
	}, logger)

	routerCfg := handler.RouterConfig{
		AuthHandler:    authHandler,
		BookHandler:    bookHandler,
		AuthMiddleware: authMiddleware,
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		Logger:         logger,
	}

	// Metrics
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		m := metrics.New()
		routerCfg.ExtraMiddleware = append(routerCfg.ExtraMiddleware, m.Middleware)

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}

		go func() {
			logger.Info().Int("port", cfg.Metrics.Port).Str("path", cfg.Metrics.Path).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(routerCfg).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// openRepositories connects to the configured database driver and builds
// the repository set.
func openRepositories(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*repository.Repositories, repository.Database, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres init failed: %w", err)
		}
		return postgres.NewRepositories(db), db, nil

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Path,
			JournalMode:     cfg.JournalMode,
			BusyTimeout:     cfg.BusyTimeout,
			SynchronousMode: cfg.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite init failed: %w", err)
		}
		return sqlite.NewRepositories(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
