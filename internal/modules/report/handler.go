package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(authctx.RequireAdmin)
		r.Get("/monthly-financial-summary", h.monthlySummary) // ?year=&month=
		r.Get("/profit-loss-statement", h.profitLoss)         // ?start_date=&end_date=
		r.Get("/material-monitoring-dashboard", h.dashboard)  // ?months=
		r.Get("/business-performance", h.performance)         // ?period=day|week|month|quarter|year
		r.Get("/export-data", h.export)                       // ?report_type=&start_date=&end_date=&format=
	})
}

func (h *Handler) monthlySummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, month := intQuery(r, "year", now.Year()), intQuery(r, "month", int(now.Month()))
	sum, err := h.service.MonthlyFinancialSummary(r.Context(), year, time.Month(month))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, sum)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pl, err := h.service.ProfitLoss(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pl)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.MaterialDashboard(r.Context(), intQuery(r, "months", dashboardMonths))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) performance(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.BusinessPerformance(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.service.Export(r.Context(), ExportType(q.Get("report_type")),
		q.Get("start_date"), q.Get("end_date"), Format(q.Get("format")))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Body) //nolint:errcheck
}

// ── helpers ──────────────────────────────────────────────────────────────────

func intQuery(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return def
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("report request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
