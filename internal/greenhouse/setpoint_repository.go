package greenhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SetpointRepository defines setpoint persistence.
type SetpointRepository interface {
	Get(ctx context.Context, greenhouseID string) (*Setpoint, error)
	Upsert(ctx context.Context, sp *Setpoint) error
	Delete(ctx context.Context, greenhouseID string) error
}

// SQLiteSetpointRepository implements SetpointRepository using SQLite.
type SQLiteSetpointRepository struct {
	db *sql.DB
}

// NewSetpointRepository creates a new SQLite-backed setpoint repository.
func NewSetpointRepository(db *sql.DB) *SQLiteSetpointRepository {
	return &SQLiteSetpointRepository{db: db}
}

// Get retrieves the setpoint row for a greenhouse.
func (r *SQLiteSetpointRepository) Get(ctx context.Context, greenhouseID string) (*Setpoint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT greenhouse_id, target_temp_min, target_temp_max, target_hum_air_max,
		        irrigation_interval_minutes, irrigation_duration_seconds,
		        target_light_intensity, changed_at
		 FROM setpoints WHERE greenhouse_id = ?`, greenhouseID)

	var sp Setpoint
	var changedAt string
	err := row.Scan(&sp.GreenhouseID, &sp.TargetTempMin, &sp.TargetTempMax,
		&sp.TargetHumAirMax, &sp.IrrigationIntervalMinutes,
		&sp.IrrigationDurationSeconds, &sp.TargetLightIntensity, &changedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSetpointNotFound
		}
		return nil, fmt.Errorf("scanning setpoint: %w", err)
	}

	sp.ChangedAt, _ = time.Parse(time.RFC3339Nano, changedAt) //nolint:errcheck // format is controlled
	return &sp, nil
}

// Upsert writes the full setpoint row for a greenhouse, replacing any
// existing one. changed_at is refreshed on every write, including writes
// that repeat the current values, and is stored with nanosecond precision
// so it strictly increases even across back-to-back writes.
func (r *SQLiteSetpointRepository) Upsert(ctx context.Context, sp *Setpoint) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	sp.ChangedAt, _ = time.Parse(time.RFC3339Nano, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO setpoints (greenhouse_id, target_temp_min, target_temp_max,
		                        target_hum_air_max, irrigation_interval_minutes,
		                        irrigation_duration_seconds, target_light_intensity, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(greenhouse_id) DO UPDATE SET
		     target_temp_min = excluded.target_temp_min,
		     target_temp_max = excluded.target_temp_max,
		     target_hum_air_max = excluded.target_hum_air_max,
		     irrigation_interval_minutes = excluded.irrigation_interval_minutes,
		     irrigation_duration_seconds = excluded.irrigation_duration_seconds,
		     target_light_intensity = excluded.target_light_intensity,
		     changed_at = excluded.changed_at`,
		sp.GreenhouseID, sp.TargetTempMin, sp.TargetTempMax, sp.TargetHumAirMax,
		sp.IrrigationIntervalMinutes, sp.IrrigationDurationSeconds,
		sp.TargetLightIntensity, now,
	)
	if err != nil {
		return fmt.Errorf("upserting setpoint: %w", err)
	}
	return nil
}

// Delete removes the setpoint row for a greenhouse.
func (r *SQLiteSetpointRepository) Delete(ctx context.Context, greenhouseID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM setpoints WHERE greenhouse_id = ?", greenhouseID)
	if err != nil {
		return fmt.Errorf("deleting setpoint: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrSetpointNotFound
	}
	return nil
}
