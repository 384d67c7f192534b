package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/v1/auth/login", h.login)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/auth/me", h.me)
	r.Post("/api/v1/auth/change-password", h.changePassword)
	r.Put("/api/v1/auth/profile", h.updateProfile)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	login := req.Login
	if login == "" {
		login = req.Email
	}
	res, err := h.service.Login(r.Context(), login, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Login successful", "token": res.Token, "user": res.User})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	u, err := h.service.Me(r.Context(), *id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.service.ChangePassword(r.Context(), *id, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context())
	if id == nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	u, err := h.service.UpdateProfile(r.Context(), *id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"message": "Profile updated successfully", "user": u})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, err error) {
	code := apperr.StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("auth request failed", "error", err)
	}
	respond(w, code, map[string]string{"error": apperr.Message(err)})
}
