package inventory

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Handler exposes inventory endpoints. All of them are admin-only.
type Handler struct {
	service Service
	monitor Monitor
}

func NewHandler(service Service, monitor Monitor) *Handler {
	return &Handler{service: service, monitor: monitor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(authctx.RequireAdmin)
		r.Get("/", h.list)                     // GET    /api/v1/inventory?category=Paper&low_stock=true
		r.Post("/", h.create)                  // POST   /api/v1/inventory
		r.Put("/{id}", h.update)               // PUT    /api/v1/inventory/{id}
		r.Delete("/{id}", h.delete)            // DELETE /api/v1/inventory/{id}
		r.Get("/alerts/low-stock", h.lowStock) // GET    /api/v1/inventory/alerts/low-stock
		r.Get("/categories", h.categories)     // GET    /api/v1/inventory/categories

		if h.monitor != nil {
			r.Get("/monitoring/usage-trends", h.usageTrends)
			r.Get("/monitoring/waste-analysis", h.wasteAnalysis)
			r.Get("/monitoring/stock-levels", h.stockLevels)
			r.Get("/monitoring/cost-analysis", h.costAnalysis)
			r.Get("/monitoring/automatic-updates", h.automaticUpdates)
		}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.service.ListItems(r.Context(), ListFilter{
		Category: q.Get("category"),
		LowStock: q.Get("low_stock") == "true",
		Params:   pagination.FromRequest(r, 50),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	item, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Inventory item created successfully", "item": item})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Inventory item updated successfully", "item": item})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Inventory item deleted successfully"})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"low_stock_items": items})
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

// ── monitoring ───────────────────────────────────────────────────────────────

func (h *Handler) usageTrends(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}
	months := intQuery(r, "months", 6)
	serve(w, r, "material_usage_trends", func(ctx context.Context) (interface{}, error) {
		return h.monitor.UsageTrends(ctx, period, months)
	})
}

func (h *Handler) wasteAnalysis(w http.ResponseWriter, r *http.Request) {
	months := intQuery(r, "months", 3)
	serve(w, r, "waste_analysis", func(ctx context.Context) (interface{}, error) {
		return h.monitor.WasteAnalysis(ctx, months)
	})
}

func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "stock_levels", func(ctx context.Context) (interface{}, error) {
		return h.monitor.StockLevels(ctx)
	})
}

func (h *Handler) costAnalysis(w http.ResponseWriter, r *http.Request) {
	months := intQuery(r, "months", 6)
	serve(w, r, "material_cost_analysis", func(ctx context.Context) (interface{}, error) {
		return h.monitor.CostAnalysis(ctx, months)
	})
}

func (h *Handler) automaticUpdates(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 30)
	serve(w, r, "automatic_updates", func(ctx context.Context) (interface{}, error) {
		return h.monitor.StockProjections(ctx, days)
	})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func serve(w http.ResponseWriter, r *http.Request, key string, fn func(context.Context) (interface{}, error)) {
	v, err := fn(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{key: v})
}

func intQuery(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("inventory request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
