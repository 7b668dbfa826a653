package greenhouse

import "strings"

// Setpoint bounds. These match the ranges the field controller firmware
// will actually act on; values outside them are rejected at the API edge.
const (
	tempMinLower = 0.0
	tempMinUpper = 40.0
	tempMaxLower = 0.0
	tempMaxUpper = 50.0

	humAirMaxLower = 0.0
	humAirMaxUpper = 100.0

	irrigationIntervalMin = 1    // minutes
	irrigationIntervalMax = 1440 // one day
	irrigationDurationMin = 1    // seconds
	irrigationDurationMax = 600  // ten minutes

	lightIntensityMin = 0.0
	lightIntensityMax = 100000.0
)

// maxGreenhouseNameLength caps greenhouse names.
const maxGreenhouseNameLength = 128

// Validate checks a setpoint write field by field and returns a map of
// field name to failure reason. All fields are required. An empty map
// means the input is valid.
func (in SetpointInput) Validate() map[string]string {
	problems := make(map[string]string)

	switch {
	case in.TargetTempMin == nil:
		problems["target_temp_min"] = "target_temp_min is required"
	case *in.TargetTempMin < tempMinLower || *in.TargetTempMin > tempMinUpper:
		problems["target_temp_min"] = "target_temp_min must be between 0 and 40"
	}

	switch {
	case in.TargetTempMax == nil:
		problems["target_temp_max"] = "target_temp_max is required"
	case *in.TargetTempMax < tempMaxLower || *in.TargetTempMax > tempMaxUpper:
		problems["target_temp_max"] = "target_temp_max must be between 0 and 50"
	case in.TargetTempMin != nil && *in.TargetTempMax <= *in.TargetTempMin:
		problems["target_temp_max"] = "target_temp_max must be greater than target_temp_min"
	}

	switch {
	case in.TargetHumAirMax == nil:
		problems["target_hum_air_max"] = "target_hum_air_max is required"
	case *in.TargetHumAirMax < humAirMaxLower || *in.TargetHumAirMax > humAirMaxUpper:
		problems["target_hum_air_max"] = "target_hum_air_max must be between 0 and 100"
	}

	switch {
	case in.IrrigationIntervalMinutes == nil:
		problems["irrigation_interval_minutes"] = "irrigation_interval_minutes is required"
	case *in.IrrigationIntervalMinutes < irrigationIntervalMin || *in.IrrigationIntervalMinutes > irrigationIntervalMax:
		problems["irrigation_interval_minutes"] = "irrigation_interval_minutes must be between 1 and 1440"
	}

	switch {
	case in.IrrigationDurationSeconds == nil:
		problems["irrigation_duration_seconds"] = "irrigation_duration_seconds is required"
	case *in.IrrigationDurationSeconds < irrigationDurationMin || *in.IrrigationDurationSeconds > irrigationDurationMax:
		problems["irrigation_duration_seconds"] = "irrigation_duration_seconds must be between 1 and 600"
	}

	switch {
	case in.TargetLightIntensity == nil:
		problems["target_light_intensity"] = "target_light_intensity is required"
	case *in.TargetLightIntensity < lightIntensityMin || *in.TargetLightIntensity > lightIntensityMax:
		problems["target_light_intensity"] = "target_light_intensity must be between 0 and 100000"
	}

	return problems
}

// Setpoint converts validated input into a Setpoint for the given
// greenhouse. Call only after Validate returns no problems.
func (in SetpointInput) Setpoint(greenhouseID string) Setpoint {
	return Setpoint{
		GreenhouseID:              greenhouseID,
		TargetTempMin:             *in.TargetTempMin,
		TargetTempMax:             *in.TargetTempMax,
		TargetHumAirMax:           *in.TargetHumAirMax,
		IrrigationIntervalMinutes: *in.IrrigationIntervalMinutes,
		IrrigationDurationSeconds: *in.IrrigationDurationSeconds,
		TargetLightIntensity:      *in.TargetLightIntensity,
	}
}

// ValidateName checks a greenhouse name. Empty names are allowed (a
// greenhouse starts unnamed); overlong ones are not.
func ValidateName(name string) map[string]string {
	problems := make(map[string]string)
	if len(strings.TrimSpace(name)) > maxGreenhouseNameLength {
		problems["name"] = "name is too long"
	}
	return problems
}
