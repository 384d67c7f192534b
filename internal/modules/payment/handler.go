package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", h.record) // POST /api/v1/payments
		r.Get("/", h.list)    // GET  /api/v1/payments?start_date=&end_date=&payment_method=
		r.Get("/stats", h.stats)
		r.Get("/job/{jobId}", h.listByJob)
		r.Get("/receipt/{paymentId}", h.receipt)
	})
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	var actor authctx.Identity
	if id := authctx.FromContext(r.Context()); id != nil {
		actor = *id
	}
	res, err := h.service.RecordPayment(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, res)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{Method: job.PaymentMode(q.Get("payment_method")), Params: pagination.FromRequest(r, 20)}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		f.From = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		// inclusive of the whole end day
		t = t.AddDate(0, 0, 1)
		f.To = &t
	}
	res, err := h.service.ListPayments(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) listByJob(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListByJob(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	rc, err := h.service.GetReceipt(r.Context(), chi.URLParam(r, "paymentId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"receipt": rc})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context(), ParseStatsPeriod(r.URL.Query().Get("period")))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("payment request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
