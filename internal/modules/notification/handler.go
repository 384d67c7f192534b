package notification

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Handler exposes the caller's notification inbox.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", h.list)                       // GET   /api/v1/notifications?limit=20&unread_only=true
		r.Get("/unread-count", h.unreadCount)    // GET   /api/v1/notifications/unread-count
		r.Patch("/mark-all-read", h.markAllRead) // PATCH /api/v1/notifications/mark-all-read
		r.Patch("/{id}/read", h.markRead)        // PATCH /api/v1/notifications/{id}/read
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respondError(w, apperr.Unauthorized("authentication required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread_only"))

	items, err := h.service.List(r.Context(), id.UserID, ListOptions{Limit: limit, UnreadOnly: unreadOnly})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"notifications": items})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respondError(w, apperr.Unauthorized("authentication required"))
		return
	}
	n, err := h.service.UnreadCount(r.Context(), id.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"unread_count": n})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respondError(w, apperr.Unauthorized("authentication required"))
		return
	}
	if err := h.service.MarkRead(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respondError(w, apperr.Unauthorized("authentication required"))
		return
	}
	n, err := h.service.MarkAllRead(r.Context(), id.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "All notifications marked as read", "updated": n})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("notification request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
