package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// handleGetSetpoint returns the stored setpoint for an owned greenhouse.
func (s *Server) handleGetSetpoint(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	sp, err := s.setpoints.Get(r.Context(), gh.ID)
	if err != nil {
		if errors.Is(err, greenhouse.ErrSetpointNotFound) {
			writeNotFound(w, "no setpoint configured")
			return
		}
		s.logger.Error("get setpoint failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to load setpoint")
		return
	}

	writeJSON(w, http.StatusOK, sp)
}

// handlePutSetpoint validates and stores a full setpoint, then pushes the
// committed values to the controller over MQTT. The publish is best-effort:
// the row is already committed, so a broker outage never fails the request.
func (s *Server) handlePutSetpoint(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	var in greenhouse.SetpointInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if problems := in.Validate(); len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	sp := in.Setpoint(gh.ID)
	if err := s.setpoints.Upsert(r.Context(), &sp); err != nil {
		s.logger.Error("upsert setpoint failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to save setpoint")
		return
	}

	s.publishSetpoint(&sp)

	writeJSON(w, http.StatusOK, sp)
}

// publishSetpoint pushes a committed setpoint to the controller's retained
// topic. Failures are logged and counted, never surfaced to the client.
func (s *Server) publishSetpoint(sp *greenhouse.Setpoint) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.PublishSetpoint(sp); err != nil {
		s.logger.Warn("setpoint publish failed",
			"error", err,
			"greenhouse_id", sp.GreenhouseID,
		)
		s.metrics.RecordSetpointPublish(false)
		return
	}

	s.metrics.RecordSetpointPublish(true)
}
