package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/logging"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/mqtt"
	"github.com/verdant-labs/greenhouse-core/internal/metrics"
)

// defaultClockSkew is how far in the future a reading's timestamp may sit
// before it is rejected. Controllers sync over NTP but drift happens.
const defaultClockSkew = 60 * time.Second

// handlerTimeout bounds the database work done per message.
const handlerTimeout = 5 * time.Second

// Deps holds the ingestor's dependencies, injected at startup.
type Deps struct {
	Client      *mqtt.Client
	Greenhouses greenhouse.Repository
	Telemetry   greenhouse.TelemetryRepository
	Connections greenhouse.ConnectionRepository
	Metrics     metrics.MetricsCollector
	Logger      *logging.Logger
	ClockSkew   time.Duration
	QoS         byte
}

// Ingestor consumes controller-originated MQTT traffic: telemetry
// readings on greenhouse/+/telemetry and connectivity notices on
// greenhouse/+/status. It is the write path that the read-only
// telemetry and connection endpoints serve from.
type Ingestor struct {
	deps Deps
}

// New creates an Ingestor. Call Start to begin consuming.
func New(deps Deps) *Ingestor {
	if deps.ClockSkew <= 0 {
		deps.ClockSkew = defaultClockSkew
	}
	return &Ingestor{deps: deps}
}

// Start subscribes to the controller topics. Subscriptions survive
// reconnects via the MQTT client's tracking.
func (i *Ingestor) Start() error {
	topics := mqtt.Topics{}

	if err := i.deps.Client.Subscribe(topics.AllTelemetry(), i.deps.QoS, i.handleTelemetry); err != nil {
		return fmt.Errorf("subscribing to telemetry: %w", err)
	}
	if err := i.deps.Client.Subscribe(topics.AllStatus(), i.deps.QoS, i.handleStatus); err != nil {
		return fmt.Errorf("subscribing to status: %w", err)
	}

	i.deps.Logger.Info("ingestor started",
		"telemetry_topic", topics.AllTelemetry(),
		"status_topic", topics.AllStatus(),
	)
	return nil
}

// telemetryMessage is the wire shape controllers publish.
type telemetryMessage struct {
	DeviceID       string   `json:"device_id"`
	Timestamp      int64    `json:"timestamp"` // unix seconds
	Sequence       int64    `json:"sequence"`
	TempAir        *float64 `json:"temp_air"`
	HumAir         *float64 `json:"hum_air"`
	Lux            *float64 `json:"lux"`
	LightIntensity *float64 `json:"light_intensity"`
	LightOn        *bool    `json:"light_on"`
	WaterLevelOK   *bool    `json:"water_level_ok"`
	PumpOn         *bool    `json:"pump_on"`
}

// validate checks a telemetry message against its topic. The device must
// identify itself with the greenhouse UUID it publishes under; mismatches
// are dropped as likely misconfigured firmware.
func (m telemetryMessage) validate(topicGreenhouseID string, maxSkew time.Duration) error {
	if _, err := uuid.Parse(m.DeviceID); err != nil {
		return fmt.Errorf("device_id is not a UUID: %q", m.DeviceID)
	}
	if m.DeviceID != topicGreenhouseID {
		return fmt.Errorf("device_id %q does not match topic greenhouse %q", m.DeviceID, topicGreenhouseID)
	}
	if m.Sequence <= 0 {
		return fmt.Errorf("sequence must be positive, got %d", m.Sequence)
	}
	if m.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be positive, got %d", m.Timestamp)
	}
	if time.Unix(m.Timestamp, 0).After(time.Now().Add(maxSkew)) {
		return fmt.Errorf("timestamp %d is too far in the future", m.Timestamp)
	}
	return nil
}

// handleTelemetry validates and stores one reading, then refreshes the
// greenhouse's last_seen stamp.
func (i *Ingestor) handleTelemetry(topic string, payload []byte) error {
	ghID, ok := mqtt.Topics{}.GreenhouseID(topic)
	if !ok {
		i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestRejected)
		return fmt.Errorf("unexpected telemetry topic: %s", topic)
	}

	var msg telemetryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestRejected)
		return fmt.Errorf("decoding telemetry from %s: %w", topic, err)
	}

	if err := msg.validate(ghID, i.deps.ClockSkew); err != nil {
		i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestRejected)
		return fmt.Errorf("rejecting telemetry from %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	// Unknown greenhouses are dropped rather than auto-registered.
	if _, err := i.deps.Greenhouses.GetByID(ctx, ghID); err != nil {
		if errors.Is(err, greenhouse.ErrGreenhouseNotFound) {
			i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestRejected)
			return fmt.Errorf("telemetry for unknown greenhouse %s", ghID)
		}
		i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestFailed)
		return fmt.Errorf("looking up greenhouse %s: %w", ghID, err)
	}

	readingTime := time.Unix(msg.Timestamp, 0).UTC()
	reading := &greenhouse.Telemetry{
		Time:           readingTime,
		GreenhouseID:   ghID,
		Sequence:       msg.Sequence,
		TempAir:        msg.TempAir,
		HumAir:         msg.HumAir,
		Lux:            msg.Lux,
		LightIntensity: msg.LightIntensity,
		LightOn:        msg.LightOn,
		WaterLevelOK:   msg.WaterLevelOK,
		PumpOn:         msg.PumpOn,
	}

	if err := i.deps.Telemetry.Insert(ctx, reading); err != nil {
		if errors.Is(err, greenhouse.ErrDuplicateReading) {
			// Broker redelivery, not a fault.
			i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestDuplicate)
			return nil
		}
		i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestFailed)
		return fmt.Errorf("storing telemetry for %s: %w", ghID, err)
	}

	if err := i.deps.Greenhouses.UpdateLastSeen(ctx, ghID, readingTime); err != nil {
		i.deps.Logger.Warn("updating last seen failed",
			"greenhouse_id", ghID,
			"error", err,
		)
	}

	i.deps.Metrics.RecordIngestMessage("telemetry", metrics.IngestStored)
	return nil
}

// statusMessage is the connectivity notice controllers (or the broker,
// via LWT) publish on greenhouse/{id}/status.
type statusMessage struct {
	Status    string `json:"status"`    // "online" or "offline"
	Timestamp int64  `json:"timestamp"` // unix seconds, optional
}

// handleStatus opens or closes a connectivity interval.
func (i *Ingestor) handleStatus(topic string, payload []byte) error {
	ghID, ok := mqtt.Topics{}.GreenhouseID(topic)
	if !ok {
		i.deps.Metrics.RecordIngestMessage("status", metrics.IngestRejected)
		return fmt.Errorf("unexpected status topic: %s", topic)
	}

	var msg statusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		i.deps.Metrics.RecordIngestMessage("status", metrics.IngestRejected)
		return fmt.Errorf("decoding status from %s: %w", topic, err)
	}

	at := time.Now().UTC()
	if msg.Timestamp > 0 {
		at = time.Unix(msg.Timestamp, 0).UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if _, err := i.deps.Greenhouses.GetByID(ctx, ghID); err != nil {
		i.deps.Metrics.RecordIngestMessage("status", metrics.IngestRejected)
		return fmt.Errorf("status for unknown greenhouse %s", ghID)
	}

	var err error
	switch msg.Status {
	case "online":
		err = i.deps.Connections.Open(ctx, ghID, at)
	case "offline":
		err = i.deps.Connections.Close(ctx, ghID, at)
	default:
		i.deps.Metrics.RecordIngestMessage("status", metrics.IngestRejected)
		return fmt.Errorf("unknown status %q from %s", msg.Status, topic)
	}
	if err != nil {
		i.deps.Metrics.RecordIngestMessage("status", metrics.IngestFailed)
		return fmt.Errorf("recording %s status for %s: %w", msg.Status, ghID, err)
	}

	i.deps.Metrics.RecordIngestMessage("status", metrics.IngestStored)
	return nil
}
