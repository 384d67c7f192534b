package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct{ DB Pinger }

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)
}

func (h HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, body := http.StatusOK, map[string]string{"status": "ok", "database": "up"}
	if err := h.DB.PingContext(ctx); err != nil {
		status, body = http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "down"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
