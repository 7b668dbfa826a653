package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// handleListPlants returns the plant template catalogue, ordered by name.
func (s *Server) handleListPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := s.catalog.ListPlants(r.Context())
	if err != nil {
		s.logger.Error("list plants failed", "error", err)
		writeInternalError(w, "failed to list plants")
		return
	}

	writeJSON(w, http.StatusOK, plants)
}

// handleGetPlant returns a single plant template.
func (s *Server) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	plant, err := s.catalog.GetPlant(r.Context(), id)
	if err != nil {
		if errors.Is(err, greenhouse.ErrPlantNotFound) {
			writeNotFound(w, "plant not found")
			return
		}
		s.logger.Error("get plant failed", "error", err, "plant_id", id)
		writeInternalError(w, "failed to load plant")
		return
	}

	writeJSON(w, http.StatusOK, plant)
}

// handleListTimezones returns the timezone catalogue.
func (s *Server) handleListTimezones(w http.ResponseWriter, r *http.Request) {
	timezones, err := s.catalog.ListTimezones(r.Context())
	if err != nil {
		s.logger.Error("list timezones failed", "error", err)
		writeInternalError(w, "failed to list timezones")
		return
	}

	writeJSON(w, http.StatusOK, timezones)
}
