package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/service"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	authService *service.AuthService
	cookieName  string
	tokenTTL    time.Duration
	logger      zerolog.Logger
}

// AuthHandlerConfig contains configuration for the auth handler.
type AuthHandlerConfig struct {
	AuthService *service.AuthService
	CookieName  string
	TokenTTL    time.Duration
	Logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		authService: cfg.AuthService,
		cookieName:  cfg.CookieName,
		tokenTTL:    cfg.TokenTTL,
		logger:      cfg.Logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers auth routes. These are unauthenticated.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// credentialsRequest is the body of register and login requests.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	// The token goes out both ways: cookie for browser clients, body for
	// bearer-header clients.
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    out.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenTTL / time.Second),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   out.Token,
	})
}
