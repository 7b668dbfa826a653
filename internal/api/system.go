package api

import "net/http"

// handleHealth returns the server health status, including database and
// broker reachability. Degraded dependencies do not fail the endpoint; the
// response body carries the per-component state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	status := "ok"
	if err := s.db.HealthCheck(r.Context()); err != nil {
		dbStatus = "unavailable"
		status = "degraded"
	}

	mqttStatus := "disconnected"
	if s.mqtt != nil && s.mqtt.IsConnected() {
		mqttStatus = "connected"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"version":  s.version,
		"database": dbStatus,
		"mqtt":     mqttStatus,
	})
}
