package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Authenticator verifies a bearer token and returns the active caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authctx.Identity, error)
}

// AuthMiddleware validates the bearer token and sets the caller in context.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Access token required")
				return
			}
			id, err := auth.Authenticate(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeAuthError(w, apperr.StatusCode(err), apperr.Message(err))
				return
			}
			ctx := authctx.WithIdentity(r.Context(), *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
