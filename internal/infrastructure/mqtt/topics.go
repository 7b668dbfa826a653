package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the base for all greenhouse topics.
// Per-greenhouse topics use the scheme: greenhouse/{greenhouse_id}/{channel}
const TopicPrefix = "greenhouse"

// Channel names under a greenhouse topic.
const (
	channelSetpoints = "setpoints"
	channelTelemetry = "telemetry"
	channelStatus    = "status"
)

// Topics provides builders for greenhouse MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Setpoints("2b1e...")
//	// Returns: "greenhouse/2b1e.../setpoints"
type Topics struct{}

// Setpoints returns the topic on which setpoint changes are pushed to
// a greenhouse's field controller.
func (Topics) Setpoints(greenhouseID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, greenhouseID, channelSetpoints)
}

// Telemetry returns the topic a greenhouse's controller reports sensor
// readings on.
func (Topics) Telemetry(greenhouseID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, greenhouseID, channelTelemetry)
}

// Status returns the topic a greenhouse's controller reports its
// online/offline status on (including via broker LWT).
func (Topics) Status(greenhouseID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, greenhouseID, channelStatus)
}

// AllTelemetry returns the wildcard subscription matching telemetry
// from every greenhouse.
func (Topics) AllTelemetry() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefix, channelTelemetry)
}

// AllStatus returns the wildcard subscription matching status messages
// from every greenhouse.
func (Topics) AllStatus() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefix, channelStatus)
}

// SystemStatus returns the topic Core publishes its own online/offline
// status to, including the Last Will and Testament.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// topicParts is the number of segments in a per-greenhouse topic.
const topicParts = 3

// GreenhouseID extracts the greenhouse id from a per-greenhouse topic.
// Returns the id and true, or "" and false if the topic does not match
// the greenhouse/{id}/{channel} shape.
func (Topics) GreenhouseID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != topicParts || parts[0] != TopicPrefix {
		return "", false
	}
	if parts[1] == "" || parts[1] == "system" {
		return "", false
	}
	return parts[1], true
}
