package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// handleListTelemetry returns recent sensor readings for an owned
// greenhouse, newest first.
//
// Query parameters: days (1..365, default 7), start/end (RFC 3339
// timestamps, used only when days is absent), and limit (1..10000,
// default 1000).
func (s *Server) handleListTelemetry(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	var q greenhouse.TelemetryQuery
	problems := make(map[string]string)
	q.Days = parseIntParam(r, "days", problems)
	q.Limit = parseIntParam(r, "limit", problems)
	q.Start = parseTimeParam(r, "start", problems)
	q.End = parseTimeParam(r, "end", problems)
	if len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	q.Normalize()
	if details := q.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	readings, err := s.telemetry.List(r.Context(), gh.ID, q)
	if err != nil {
		s.logger.Error("list telemetry failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to load telemetry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(readings),
		"data":  readings,
	})
}

// handleLatestTelemetry returns the single most recent reading, or 404 when
// the greenhouse has never reported.
func (s *Server) handleLatestTelemetry(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	reading, err := s.telemetry.Latest(r.Context(), gh.ID)
	if err != nil {
		s.logger.Error("latest telemetry failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to load telemetry")
		return
	}
	if reading == nil {
		writeNotFound(w, "no telemetry recorded")
		return
	}

	writeJSON(w, http.StatusOK, reading)
}

// parseIntParam reads an optional integer query parameter. Zero means
// absent; a non-integer value records a problem under the parameter name.
func parseIntParam(r *http.Request, name string, problems map[string]string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		problems[name] = "must be an integer"
		return 0
	}
	return v
}

// parseTimeParam reads an optional RFC 3339 timestamp query parameter.
// The zero time means absent.
func parseTimeParam(r *http.Request, name string, problems map[string]string) time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		problems[name] = "must be an RFC 3339 timestamp"
		return time.Time{}
	}
	return v
}
