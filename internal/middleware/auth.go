package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/logger"
	"github.com/gradeboard-dev/gradeboard/internal/token"
)

// Key to store the principal in the request context
type key int

const PrincipalKey key = 0

var errNoToken = errors.New("no bearer token")

// Auth is the request guard: it extracts the bearer token, verifies it and
// attaches the resulting principal to the request context. It never touches
// the directory: the token codec is all it needs, which also means a role
// change only shows up once the user logs in again.
type Auth struct {
	codec *token.Codec
}

func NewAuth(codec *token.Codec) *Auth {
	return &Auth{codec: codec}
}

// RequireAuth returns middleware that requires a valid session token.
func (a *Auth) RequireAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly returns middleware that additionally requires the
// administrator role.
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

// extractPrincipal pulls the bearer token from the Authorization header and
// verifies it. The dashboard is an API for a single-page client; there is
// no cookie fallback.
func (a *Auth) extractPrincipal(r *http.Request) (*domain.Principal, error) {
	tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tokenString == "" {
		return nil, errNoToken
	}
	return a.codec.Verify(tokenString)
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := a.extractPrincipal(r)
			if err != nil {
				if errors.Is(err, errNoToken) {
					http.Error(w, "Please sign in", http.StatusUnauthorized)
					return
				}
				// Classified for the logs, uniform for the caller.
				switch {
				case errors.Is(err, token.ErrExpired):
					logger.Log.Info("rejected expired token", "path", r.URL.Path)
				case errors.Is(err, token.ErrInvalidSignature):
					logger.Log.Warn("rejected token with bad signature", "path", r.URL.Path)
				case errors.Is(err, token.ErrMalformed):
					logger.Log.Warn("rejected malformed token", "path", r.URL.Path)
				default:
					logger.Log.Warn("rejected token", "path", r.URL.Path, "error", err)
				}
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			if adminOnly && !principal.IsAdmin() {
				http.Error(w, "Administrator access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(r *http.Request) *domain.Principal {
	principal, ok := r.Context().Value(PrincipalKey).(*domain.Principal)
	if !ok {
		return nil
	}
	return principal
}
