package job

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Get("/", h.list)                     // GET   /api/v1/jobs?status=&worker_id=&customer_id=
		r.Post("/", h.create)                  // POST  /api/v1/jobs
		r.Get("/ticket/{ticket}", h.getTicket) // GET   /api/v1/jobs/ticket/{ticket}
		r.Get("/{id}", h.get)                  // GET   /api/v1/jobs/{id}
		r.Patch("/{id}/status", h.status)      // PATCH /api/v1/jobs/{id}/status
		r.Put("/{id}", h.update)               // PUT   /api/v1/jobs/{id}
		r.With(authctx.RequireAdmin).Post("/waste", h.waste)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{Status: Status(q.Get("status")), Params: pagination.FromRequest(r, 20)}
	for key, dst := range map[string]**uuid.UUID{"worker_id": &f.WorkerID, "customer_id": &f.CustomerID} {
		if v := q.Get(key); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				respond(w, http.StatusBadRequest, map[string]string{"error": "invalid " + key})
				return
			}
			*dst = &id
		}
	}
	res, err := h.service.ListJobs(r.Context(), identity(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	j, err := h.service.CreateJob(r.Context(), identity(r), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Job created successfully", "job": j})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetJob(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetJobByTicket(r.Context(), chi.URLParam(r, "ticket"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	j, err := h.service.UpdateStatus(r.Context(), identity(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Job status updated successfully", "job": j})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	j, err := h.service.UpdateJob(r.Context(), identity(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Job updated successfully", "job": j})
}

func (h *Handler) waste(w http.ResponseWriter, r *http.Request) {
	var req RecordWasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	waste, err := h.service.RecordWaste(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Waste recorded successfully", "waste": waste})
}

// ── helpers ──────────────────────────────────────────────────────────────────

// identity is set by the auth middleware on every /api/v1 route but login.
func identity(r *http.Request) authctx.Identity {
	if id := authctx.FromContext(r.Context()); id != nil {
		return *id
	}
	return authctx.Identity{}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("job request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
