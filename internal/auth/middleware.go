// Package auth provides bearer-token authentication middleware for the
// Shelfmark API. Tokens are verified statelessly; any validly authenticated
// subject may invoke any protected operation.
package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// TokenVerifier validates a bearer token and returns the embedded user ID.
type TokenVerifier interface {
	Verify(tokenString string) (int64, error)
}

// Config contains configuration for the auth middleware.
type Config struct {
	// CookieName is the fallback cookie checked when no Authorization
	// header is present.
	CookieName string

	// SkipPaths are paths that skip authentication.
	SkipPaths []string
}

// DefaultConfig returns the default auth configuration.
func DefaultConfig() Config {
	return Config{
		CookieName: "token",
		SkipPaths:  []string{"/health"},
	}
}

// Middleware creates an authentication middleware. Requests without a token
// get 401 "No token provided"; requests with a token that fails
// verification get 401 "Invalid token". On success the user ID is attached
// to the request context.
func Middleware(verifier TokenVerifier, config Config, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}

			tokenString := extractToken(r, config.CookieName)
			if tokenString == "" {
				writeAuthError(w, "No token provided")
				return
			}

			userID, err := verifier.Verify(tokenString)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
				writeAuthError(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// extractToken pulls the bearer token from the Authorization header
// ("Bearer <token>", the second whitespace-separated segment), falling back
// to the named cookie.
func extractToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) >= 2 {
			return parts[1]
		}
		return ""
	}

	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}

	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
