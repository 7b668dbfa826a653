package api

import (
	"net/http"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// handleListConnections returns recent connectivity intervals for an owned
// greenhouse, newest first. An interval with a null end_ts is still open.
//
// Query parameter: limit (1..500, default 50).
func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	gh, ok := s.fetchOwnedGreenhouse(w, r)
	if !ok {
		return
	}

	var q greenhouse.ConnectionQuery
	problems := make(map[string]string)
	q.Limit = parseIntParam(r, "limit", problems)
	if len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	q.Normalize()
	if details := q.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	events, err := s.connections.List(r.Context(), gh.ID, q)
	if err != nil {
		s.logger.Error("list connections failed", "error", err, "greenhouse_id", gh.ID)
		writeInternalError(w, "failed to load connection history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(events),
		"data":  events,
	})
}
