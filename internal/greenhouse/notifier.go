package greenhouse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/mqtt"
)

// SetpointPublisher pushes setpoint changes towards field controllers.
// Publishing is best-effort: the setpoint is already durable in the
// database by the time this runs, and a controller that misses the push
// picks the retained message up on its next broker connect.
type SetpointPublisher interface {
	PublishSetpoint(sp *Setpoint) error
}

// MQTTNotifier publishes setpoints over the shared MQTT client.
type MQTTNotifier struct {
	client *mqtt.Client
	qos    byte
}

// NewMQTTNotifier creates a notifier using the shared MQTT client.
func NewMQTTNotifier(client *mqtt.Client, qos byte) *MQTTNotifier {
	return &MQTTNotifier{client: client, qos: qos}
}

// setpointMessage is the wire shape controllers consume.
type setpointMessage struct {
	GreenhouseID              string  `json:"greenhouse_id"`
	TargetTempMin             float64 `json:"target_temp_min"`
	TargetTempMax             float64 `json:"target_temp_max"`
	TargetHumAirMax           float64 `json:"target_hum_air_max"`
	IrrigationIntervalMinutes int64   `json:"irrigation_interval_minutes"`
	IrrigationDurationSeconds int64   `json:"irrigation_duration_seconds"`
	TargetLightIntensity      float64 `json:"target_light_intensity"`
	ChangedAt                 string  `json:"changed_at"`
}

// PublishSetpoint sends the setpoint to greenhouse/{id}/setpoints as a
// retained message. If the broker connection is down it makes one inline
// reconnect attempt before giving up; the caller logs failures rather
// than surfacing them to the API client.
func (n *MQTTNotifier) PublishSetpoint(sp *Setpoint) error {
	msg := setpointMessage{
		GreenhouseID:              sp.GreenhouseID,
		TargetTempMin:             sp.TargetTempMin,
		TargetTempMax:             sp.TargetTempMax,
		TargetHumAirMax:           sp.TargetHumAirMax,
		IrrigationIntervalMinutes: sp.IrrigationIntervalMinutes,
		IrrigationDurationSeconds: sp.IrrigationDurationSeconds,
		TargetLightIntensity:      sp.TargetLightIntensity,
		ChangedAt:                 sp.ChangedAt.UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding setpoint message: %w", err)
	}

	if !n.client.IsConnected() {
		if err := n.client.Reconnect(); err != nil {
			return fmt.Errorf("broker unavailable: %w", err)
		}
	}

	topic := mqtt.Topics{}.Setpoints(sp.GreenhouseID)
	if err := n.client.Publish(topic, payload, n.qos, true); err != nil {
		return fmt.Errorf("publishing setpoint: %w", err)
	}
	return nil
}
