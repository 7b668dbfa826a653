package api

import (
	"net/http"
	"testing"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

func validSetpointBody() map[string]any {
	return map[string]any{
		"target_temp_min":             18.0,
		"target_temp_max":             26.0,
		"target_hum_air_max":          70.0,
		"irrigation_interval_minutes": 120,
		"irrigation_duration_seconds": 30,
		"target_light_intensity":      20000.0,
	}
}

func TestSetpoint_GetBeforeConfiguredIs404(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "nosp@example.com")
	ghID := ts.createGreenhouse(t, token, "Bare")

	rec := ts.request(t, http.MethodGet, "/api/greenhouses/"+ghID+"/setpoint", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSetpoint_PutThenGet(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "sp@example.com")
	ghID := ts.createGreenhouse(t, token, "Configured")

	put := ts.request(t, http.MethodPut, "/api/greenhouses/"+ghID+"/setpoint", token, validSetpointBody())
	if put.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200: %s", put.Code, put.Body.String())
	}

	var sp greenhouse.Setpoint
	decodeBody(t, put, &sp)
	if sp.TargetTempMin != 18.0 || sp.TargetTempMax != 26.0 {
		t.Errorf("temps = %v/%v", sp.TargetTempMin, sp.TargetTempMax)
	}
	if sp.ChangedAt.IsZero() {
		t.Error("changed_at should be set")
	}

	get := ts.request(t, http.MethodGet, "/api/greenhouses/"+ghID+"/setpoint", token, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", get.Code)
	}

	var stored greenhouse.Setpoint
	decodeBody(t, get, &stored)
	if stored.IrrigationIntervalMinutes != 120 || stored.IrrigationDurationSeconds != 30 {
		t.Errorf("irrigation = %d/%d",
			stored.IrrigationIntervalMinutes, stored.IrrigationDurationSeconds)
	}
}

func TestSetpoint_ValidationRejections(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "spval@example.com")
	ghID := ts.createGreenhouse(t, token, "Strict")

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{
			name:   "max not above min",
			mutate: func(b map[string]any) { b["target_temp_max"] = 18.0 },
			field:  "target_temp_max",
		},
		{
			name:   "temp min out of range",
			mutate: func(b map[string]any) { b["target_temp_min"] = -5.0 },
			field:  "target_temp_min",
		},
		{
			name:   "humidity over 100",
			mutate: func(b map[string]any) { b["target_hum_air_max"] = 150.0 },
			field:  "target_hum_air_max",
		},
		{
			name:   "interval too long",
			mutate: func(b map[string]any) { b["irrigation_interval_minutes"] = 2000 },
			field:  "irrigation_interval_minutes",
		},
		{
			name:   "missing field",
			mutate: func(b map[string]any) { delete(b, "target_light_intensity") },
			field:  "target_light_intensity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validSetpointBody()
			tt.mutate(body)

			rec := ts.request(t, http.MethodPut, "/api/greenhouses/"+ghID+"/setpoint", token, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if e := decodeError(t, rec); e.Details[tt.field] == "" {
				t.Errorf("details should name %q, got %v", tt.field, e.Details)
			}

			// A rejected write must leave no setpoint behind.
			get := ts.request(t, http.MethodGet, "/api/greenhouses/"+ghID+"/setpoint", token, nil)
			if get.Code != http.StatusNotFound {
				t.Errorf("setpoint exists after rejected write: %d", get.Code)
			}
		})
	}
}

func TestSetpoint_ForeignGreenhouseIs403(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.registerUser(t, "spowner@example.com")
	_, otherToken := ts.registerUser(t, "spother@example.com")
	ghID := ts.createGreenhouse(t, ownerToken, "Guarded")

	rec := ts.request(t, http.MethodPut, "/api/greenhouses/"+ghID+"/setpoint", otherToken, validSetpointBody())
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestSetpoint_SucceedsWithoutBroker(t *testing.T) {
	// The test server has no MQTT client or notifier wired at all. A
	// setpoint write must still commit and return 200.
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "nobroker@example.com")
	ghID := ts.createGreenhouse(t, token, "Offline")

	rec := ts.request(t, http.MethodPut, "/api/greenhouses/"+ghID+"/setpoint", token, validSetpointBody())
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite missing broker", rec.Code)
	}
}
