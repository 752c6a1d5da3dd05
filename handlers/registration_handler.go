package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/safaconnect/tournament-engine/middleware"
	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
	verificationService services.VerificationService
}

func NewRegistrationHandler(
	registrationService services.RegistrationService,
	verificationService services.VerificationService,
) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		verificationService: verificationService,
	}
}

// SubmitRegistration accepts a multipart form with the entrant's details,
// a required live photo and an optional reference photo.
func (h *RegistrationHandler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	input := services.SubmitRegistrationInput{
		TournamentID: tournamentID,
		IDNumber:     r.FormValue("id_number"),
		FullName:     r.FormValue("full_name"),
	}
	if v := r.FormValue("team_id"); v != "" {
		teamID, convErr := strconv.Atoi(v)
		if convErr != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid team_id %q", v))
			return
		}
		input.TeamID = &teamID
	}

	input.LivePhoto, input.LivePhotoType, err = formPhoto(r, "live_photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if refPhoto, refType, refErr := formPhoto(r, "reference_photo"); refErr == nil {
		input.ReferencePhoto = refPhoto
		input.ReferencePhotoType = refType
	}

	registration, err := h.registrationService.SubmitRegistration(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registration": registration}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.GetRegistration(r.Context(), registrationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registration": registration}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.VerificationStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.VerificationStatus(v)
		status = &st
	}

	registrations, err := h.registrationService.ListRegistrations(r.Context(), tournamentID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registrations": registrations}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadReferencePhoto replaces the stored reference photo and queues a
// fresh automatic verification.
func (h *RegistrationHandler) UploadReferencePhoto(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("reference_photo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get reference photo from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for photo"))
		return
	}

	registration, err := h.registrationService.UploadReferencePhoto(r.Context(), registrationID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registration": registration}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Reverify re-runs the automatic comparison immediately, bypassing the
// background queue.
func (h *RegistrationHandler) Reverify(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.verificationService.ProcessRegistration(r.Context(), registrationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registration": registration}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ManualDecision records an operator's verified/rejected override.
func (h *RegistrationHandler) ManualDecision(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	operatorID, err := middleware.GetOperatorIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current operator")
		return
	}

	var input struct {
		Decision models.VerificationStatus `json:"decision"`
		Notes    *string                   `json:"notes,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.verificationService.ManualDecision(r.Context(), registrationID, operatorID, input.Decision, input.Notes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registration": registration}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) VerificationHistory(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.verificationService.History(r.Context(), registrationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"history": history}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func formPhoto(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %s file: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		return nil, "", fmt.Errorf("content-type header is required for %s", field)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	return data, contentType, nil
}
