package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/verdant-labs/greenhouse-core/internal/auth"
	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// updateMeRequest carries the mutable profile fields. Absent fields are
// left unchanged.
type updateMeRequest struct {
	DisplayName      *string `json:"display_name,omitempty"`
	TimezoneID       *int64  `json:"timezone_id,omitempty"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
}

// handleGetMe returns the authenticated user's profile.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

// handleUpdateMe patches the authenticated user's profile.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			writeValidationError(w, map[string]string{"display_name": "must not be empty"})
			return
		}
		user.DisplayName = name
	}

	if req.TimezoneID != nil {
		if _, err := s.catalog.GetTimezone(r.Context(), *req.TimezoneID); err != nil {
			if errors.Is(err, greenhouse.ErrTimezoneNotFound) {
				writeValidationError(w, map[string]string{"timezone_id": "unknown timezone"})
				return
			}
			s.logger.Error("timezone lookup failed", "error", err)
			writeInternalError(w, "failed to update profile")
			return
		}
		user.TimezoneID = *req.TimezoneID
	}

	if req.PhoneCountryCode != nil {
		user.PhoneCountryCode = *req.PhoneCountryCode
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		s.logger.Error("update user failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteMe removes the authenticated user's account. Greenhouses,
// setpoints, telemetry, and connection history go with it via foreign key
// cascades.
func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.users.Delete(r.Context(), user.ID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Already gone; treat the delete as done.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.logger.Error("delete user failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to delete account")
		return
	}

	s.logger.Info("user deleted", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
