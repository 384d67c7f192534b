package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("amount must be greater than 0"), http.StatusBadRequest},
		{"not found", NotFound("job %s not found", "abc"), http.StatusNotFound},
		{"forbidden", Forbidden("access denied"), http.StatusForbidden},
		{"unauthorized", Unauthorized("invalid token"), http.StatusUnauthorized},
		{"conflict", Conflict("duplicate receipt number"), http.StatusConflict},
		{"wrapped", fmt.Errorf("record payment: %w", NotFound("job not found")), http.StatusNotFound},
		{"plain", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	t.Parallel()

	if got := Message(errors.New("pq: password authentication failed")); got != "internal server error" {
		t.Errorf("Message = %q, want %q", got, "internal server error")
	}
	err := fmt.Errorf("update job: %w", Validation("status is invalid"))
	if got := Message(err); got != "status is invalid" {
		t.Errorf("Message = %q, want %q", got, "status is invalid")
	}
}

func TestErrorsIsKind(t *testing.T) {
	t.Parallel()

	err := Conflict("email already registered")
	if !errors.Is(err, ErrConflict) {
		t.Error("errors.Is(err, ErrConflict) = false, want true")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true, want false")
	}
}
