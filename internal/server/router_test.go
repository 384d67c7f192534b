package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/config"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type fakeAuth struct{ id authctx.Identity }

func (f fakeAuth) Authenticate(_ context.Context, token string) (*authctx.Identity, error) {
	switch token {
	case "good":
	case "revoked":
		return nil, apperr.Unauthorized(`token for "Wes" was revoked`)
	default:
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	id := f.id
	return &id, nil
}

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

type whoami struct{}

func (whoami) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/whoami", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(authctx.FromContext(r.Context()))
	})
	r.With(authctx.RequireAdmin).Get("/api/v1/admin-only", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

type login struct{}

func (login) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func newTestRouter(role authctx.Role, db Pinger) http.Handler {
	cfg := config.Config{CORSAllowedOrigins: []string{"*"}, RateLimitPerMinute: 1000}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := fakeAuth{id: authctx.Identity{UserID: uuid.New(), Name: "Wes", Role: role}}
	return NewRouter(cfg, logger, auth, Handlers{
		Health:    HealthHandler{DB: db},
		Public:    login{},
		Protected: []Routes{whoami{}},
	})
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRoutes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(authctx.RoleWorker, fakeDB{})
	tests := []struct {
		name, path, token string
		want              int
	}{
		{"no token", "/api/v1/whoami", "", http.StatusUnauthorized},
		{"bad token", "/api/v1/whoami", "bad", http.StatusUnauthorized},
		{"good token", "/api/v1/whoami", "good", http.StatusOK},
		{"worker on admin route", "/api/v1/admin-only", "good", http.StatusForbidden},
	}
	for _, tt := range tests {
		if rec := do(h, http.MethodGet, tt.path, tt.token); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}

	rec := do(h, http.MethodGet, "/api/v1/whoami", "good")
	var id authctx.Identity
	if err := json.NewDecoder(rec.Body).Decode(&id); err != nil {
		t.Fatal(err)
	}
	if id.Name != "Wes" || id.Role != authctx.RoleWorker {
		t.Errorf("identity = %+v", id)
	}
}

func TestAuthErrorsAreJSON(t *testing.T) {
	t.Parallel()

	h := newTestRouter(authctx.RoleWorker, fakeDB{})
	tests := []struct {
		name, path, token string
		want              string
	}{
		{"no token", "/api/v1/whoami", "", "Access token required"},
		{"quoted message", "/api/v1/whoami", "revoked", `token for "Wes" was revoked`},
		{"forbidden", "/api/v1/admin-only", "good", "access denied"},
	}
	for _, tt := range tests {
		rec := do(h, http.MethodGet, tt.path, tt.token)
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type = %q, want application/json", tt.name, ct)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode body: %v", tt.name, err)
		}
		if body["error"] != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.name, body["error"], tt.want)
		}
	}
}

func TestPublicAndOperationalRoutes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(authctx.RoleAdmin, fakeDB{})
	if rec := do(h, http.MethodPost, "/api/v1/auth/login", ""); rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/v1/admin-only", "good"); rec.Code != http.StatusNoContent {
		t.Errorf("admin route status = %d, want 204", rec.Code)
	}
}

func TestHealthDegraded(t *testing.T) {
	t.Parallel()

	h := newTestRouter(authctx.RoleAdmin, fakeDB{err: errors.New("connection refused")})
	rec := do(h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["database"] != "down" {
		t.Errorf("body = %v", body)
	}
}

func TestLoginRateLimit(t *testing.T) {
	t.Parallel()

	h := newTestRouter(authctx.RoleAdmin, fakeDB{})
	var last int
	for i := 0; i < loginRatePerMinute+1; i++ {
		last = do(h, http.MethodPost, "/api/v1/auth/login", "").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status after %d logins = %d, want 429", loginRatePerMinute+1, last)
	}
}
