package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate registration from service check", services.ErrDuplicateRegistration, http.StatusConflict},
		{"duplicate registration from unique constraint", repositories.ErrRegistrationDuplicate, http.StatusConflict},
		{"wrapped constraint error", fmt.Errorf("could not save registration: %w", repositories.ErrRegistrationDuplicate), http.StatusConflict},
		{"registration not found", repositories.ErrRegistrationNotFound, http.StatusNotFound},
		{"validation failure", services.ErrValidationFailed, http.StatusBadRequest},
		{"registration closed", services.ErrRegistrationClosed, http.StatusConflict},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unmapped error", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", nil)

			mapServiceErrorToHTTP(rec, req, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
