package expense

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Handler exposes operational expenses to admins.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/operational-expenses", func(r chi.Router) {
		r.Use(authctx.RequireAdmin)
		r.Get("/", h.list)                          // GET    /api/v1/operational-expenses?category=&month=&year=
		r.Post("/", h.create)                       // POST   /api/v1/operational-expenses
		r.Get("/categories", h.categories)          // GET    /api/v1/operational-expenses/categories
		r.Get("/monthly-summary", h.monthlySummary) // GET    /api/v1/operational-expenses/monthly-summary?year=
		r.Put("/{id}", h.update)                    // PUT    /api/v1/operational-expenses/{id}
		r.Delete("/{id}", h.delete)                 // DELETE /api/v1/operational-expenses/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))
	res, err := h.service.ListExpenses(r.Context(), ListFilter{
		Category: q.Get("category"),
		Month:    month,
		Year:     year,
		Params:   pagination.FromRequest(r, 20),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	var actor authctx.Identity
	if id := authctx.FromContext(r.Context()); id != nil {
		actor = *id
	}
	e, err := h.service.CreateExpense(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Operational expense recorded successfully", "expense": e})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	e, err := h.service.UpdateExpense(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Operational expense updated successfully", "expense": e})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Operational expense deleted successfully"})
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

func (h *Handler) monthlySummary(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	sum, err := h.service.MonthlySummary(r.Context(), year)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, sum)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("expense request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
