package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Router assembles the HTTP API: public auth routes, token-protected book
// routes, and a health check.
type Router struct {
	authHandler    *AuthHandler
	bookHandler    *BookHandler
	authMiddleware func(http.Handler) http.Handler
	allowedOrigin  string
	extraWrappers  []func(http.Handler) http.Handler
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	BookHandler    *BookHandler
	AuthMiddleware func(http.Handler) http.Handler

	// AllowedOrigin is the single client origin allowed by CORS.
	// Empty disables CORS handling.
	AllowedOrigin string

	// ExtraMiddleware is applied to every route (e.g. metrics).
	ExtraMiddleware []func(http.Handler) http.Handler

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		authHandler:    cfg.AuthHandler,
		bookHandler:    cfg.BookHandler,
		authMiddleware: cfg.AuthMiddleware,
		allowedOrigin:  cfg.AllowedOrigin,
		extraWrappers:  cfg.ExtraMiddleware,
		logger:         cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(rt.logger))
	r.Use(Recoverer(rt.logger))
	r.Use(CORS(rt.allowedOrigin))
	for _, mw := range rt.extraWrappers {
		r.Use(mw)
	}

	r.Get("/health", rt.handleHealth)

	// Public routes
	rt.authHandler.RegisterRoutes(r)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(rt.authMiddleware)
		rt.bookHandler.RegisterRoutes(r)
	})

	return r
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
