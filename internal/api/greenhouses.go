package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// greenhouseRequest is the body for greenhouse create and rename.
type greenhouseRequest struct {
	Name string `json:"name"`
}

// fetchOwnedGreenhouse loads the greenhouse from the URL and enforces
// ownership: absent id is 404, someone else's greenhouse is 403. On failure
// the response has already been written and the second return is false.
func (s *Server) fetchOwnedGreenhouse(w http.ResponseWriter, r *http.Request) (*greenhouse.Greenhouse, bool) {
	id := chi.URLParam(r, "id")

	gh, err := s.greenhouses.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, greenhouse.ErrGreenhouseNotFound) {
			writeNotFound(w, "greenhouse not found")
			return nil, false
		}
		s.logger.Error("get greenhouse failed", "error", err, "greenhouse_id", id)
		writeInternalError(w, "failed to load greenhouse")
		return nil, false
	}

	user := userFromContext(r.Context())
	if gh.OwnerID != user.ID {
		writeForbidden(w, "greenhouse belongs to another account")
		return nil, false
	}

	return gh, true
}

// handleListGreenhouses returns the authenticated user's greenhouses.
func (s *Server) handleListGreenhouses(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	list, err := s.greenhouses.ListByOwner(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list greenhouses failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to list greenhouses")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// handleCreateGreenhouse registers a new greenhouse owned by the caller.
func (s *Server) handleCreateGreenhouse(w http.ResponseWriter, r *http.Request) {
	var req greenhouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if problems := greenhouse.ValidateName(req.Name); len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	user := userFromContext(r.Context())
	gh := &greenhouse.Greenhouse{
		OwnerID: user.ID,
		Name:    req.Name,
	}

	if err := s.greenhouses.Create(r.Context(), gh); err != nil {
		s.logger.Error("create greenhouse failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to create greenhouse")
		return
	}

	s.logger.Info("greenhouse created", "greenhouse_id", gh.ID, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, gh)
}

// handleGetGreenhouse returns a single owned greenhouse.
func (s *Server) handleGetGreenhouse(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, gh)
}

// handleRenameGreenhouse changes an owned greenhouse's name.
func (s *Server) handleRenameGreenhouse(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	var req greenhouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if problems := greenhouse.ValidateName(req.Name); len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	if err := s.greenhouses.Rename(r.Context(), gh.ID, req.Name); err != nil {
		s.logger.Error("rename greenhouse failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to rename greenhouse")
		return
	}

	gh.Name = req.Name
	writeJSON(w, http.StatusOK, gh)
}

// handleDeleteGreenhouse removes an owned greenhouse. Setpoints, telemetry,
// and connection history cascade with it.
func (s *Server) handleDeleteGreenhouse(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	if err := s.greenhouses.Delete(r.Context(), gh.ID); err != nil {
		s.logger.Error("delete greenhouse failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to delete greenhouse")
		return
	}

	s.logger.Info("greenhouse deleted", "greenhouse_id", gh.ID)
	w.WriteHeader(http.StatusNoContent)
}
