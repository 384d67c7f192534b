package customer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Get("/", h.list)                 // GET /api/v1/customers?search=ada&page=1&limit=20
		r.Get("/stats", h.stats)           // GET /api/v1/customers/stats
		r.Get("/search/{query}", h.search) // GET /api/v1/customers/search/{query}
		r.Get("/{id}", h.get)              // GET /api/v1/customers/{id}
		r.Put("/{id}", h.update)           // PUT /api/v1/customers/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListCustomers(r.Context(), ListFilter{
		Search: r.URL.Query().Get("search"),
		Params: pagination.FromRequest(r, 20),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.SearchCustomers(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	c, err := h.service.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Customer updated successfully", "customer": c})
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
		slog.Error("customer request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
