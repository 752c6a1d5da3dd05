package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/services"
)

type SportHandler struct {
	sportService services.SportService
}

func NewSportHandler(sportService services.SportService) *SportHandler {
	return &SportHandler{sportService: sportService}
}

func (h *SportHandler) CreateSport(w http.ResponseWriter, r *http.Request) {
	var sport models.SportRuleSet
	if err := readJSON(w, r, &sport); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sportService.CreateSport(r.Context(), &sport); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"sport": sport}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SportHandler) GetSportByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "sportCode")

	sport, err := h.sportService.GetSportByCode(r.Context(), code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"sport": sport}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SportHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.sportService.ListSports(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"sports": sports}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
