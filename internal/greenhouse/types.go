package greenhouse

import (
	"errors"
	"time"
)

// Greenhouse is a registered greenhouse owned by exactly one user.
// LastSeen is updated whenever telemetry arrives from its controller.
type Greenhouse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Setpoint is the target configuration pushed to a greenhouse's field
// controller. One row per greenhouse; writes replace the whole set.
type Setpoint struct {
	GreenhouseID              string    `json:"greenhouse_id"`
	TargetTempMin             float64   `json:"target_temp_min"`
	TargetTempMax             float64   `json:"target_temp_max"`
	TargetHumAirMax           float64   `json:"target_hum_air_max"`
	IrrigationIntervalMinutes int64     `json:"irrigation_interval_minutes"`
	IrrigationDurationSeconds int64     `json:"irrigation_duration_seconds"`
	TargetLightIntensity      float64   `json:"target_light_intensity"`
	ChangedAt                 time.Time `json:"changed_at"`
}

// SetpointInput carries a setpoint write. Pointer fields distinguish
// "absent" from zero so every field can be required.
type SetpointInput struct {
	TargetTempMin             *float64 `json:"target_temp_min"`
	TargetTempMax             *float64 `json:"target_temp_max"`
	TargetHumAirMax           *float64 `json:"target_hum_air_max"`
	IrrigationIntervalMinutes *int64   `json:"irrigation_interval_minutes"`
	IrrigationDurationSeconds *int64   `json:"irrigation_duration_seconds"`
	TargetLightIntensity      *float64 `json:"target_light_intensity"`
}

// Telemetry is a single sensor reading reported by a field controller.
// Optional sensors report nil when the controller has no such hardware.
type Telemetry struct {
	Time           time.Time `json:"time"`
	GreenhouseID   string    `json:"greenhouse_id"`
	Sequence       int64     `json:"sequence"`
	TempAir        *float64  `json:"temp_air"`
	HumAir         *float64  `json:"hum_air"`
	Lux            *float64  `json:"lux"`
	LightIntensity *float64  `json:"light_intensity"`
	LightOn        *bool     `json:"light_on"`
	WaterLevelOK   *bool     `json:"water_level_ok"`
	PumpOn         *bool     `json:"pump_on"`
}

// ConnectionEvent is a recorded connectivity interval for a greenhouse's
// field hardware. End is nil while the interval is still open.
type ConnectionEvent struct {
	ID           int64      `json:"id"`
	GreenhouseID string     `json:"greenhouse_id"`
	Start        time.Time  `json:"start_ts"`
	End          *time.Time `json:"end_ts"`
}

// Plant is a read-only template of recommended setpoints for a crop.
type Plant struct {
	ID                        string   `json:"id"`
	Name                      string   `json:"name"`
	Description               string   `json:"description"`
	TargetTempMin             *float64 `json:"target_temp_min"`
	TargetTempMax             *float64 `json:"target_temp_max"`
	TargetHumAirMax           *float64 `json:"target_hum_air_max"`
	IrrigationIntervalMinutes *int64   `json:"irrigation_interval_minutes"`
	IrrigationDurationSeconds *int64   `json:"irrigation_duration_seconds"`
	TargetLightIntensity      *float64 `json:"target_light_intensity"`
}

// Timezone is a reference row users pick from at registration.
type Timezone struct {
	ID        int64  `json:"id"`
	TzName    string `json:"tz_name"`
	UTCOffset int64  `json:"utc_offset"`
}

// Sentinel errors for greenhouse operations.
var (
	ErrGreenhouseNotFound = errors.New("greenhouse not found")
	ErrSetpointNotFound   = errors.New("setpoint not found")
	ErrPlantNotFound      = errors.New("plant not found")
	ErrTimezoneNotFound   = errors.New("timezone not found")
	ErrDuplicateReading   = errors.New("duplicate telemetry reading")
)
