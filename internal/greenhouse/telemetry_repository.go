package greenhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Telemetry query bounds.
const (
	telemetryDaysDefault  = 7
	telemetryDaysMax      = 365
	telemetryLimitDefault = 1000
	telemetryLimitMax     = 10000
)

// TelemetryQuery selects a window of readings for one greenhouse, either
// as a trailing day count or an explicit start/end range. Days takes
// precedence: when set, Start and End are ignored. Zero values fall back
// to defaults in Normalize.
type TelemetryQuery struct {
	Days  int
	Start time.Time
	End   time.Time
	Limit int
}

// Normalize applies defaults for unset fields and resolves the days
// versus range precedence.
func (q *TelemetryQuery) Normalize() {
	if q.Days != 0 {
		q.Start, q.End = time.Time{}, time.Time{}
	} else if q.Start.IsZero() && q.End.IsZero() {
		q.Days = telemetryDaysDefault
	}
	if q.Limit == 0 {
		q.Limit = telemetryLimitDefault
	}
}

// Validate checks the query bounds and returns field problems.
func (q TelemetryQuery) Validate() map[string]string {
	problems := make(map[string]string)
	if q.Days != 0 {
		if q.Days < 1 || q.Days > telemetryDaysMax {
			problems["days"] = "days must be between 1 and 365"
		}
	} else if !q.Start.IsZero() && !q.End.IsZero() && !q.End.After(q.Start) {
		problems["end"] = "end must be after start"
	}
	if q.Limit < 1 || q.Limit > telemetryLimitMax {
		problems["limit"] = "limit must be between 1 and 10000"
	}
	return problems
}

// TelemetryRepository defines telemetry persistence.
type TelemetryRepository interface {
	List(ctx context.Context, greenhouseID string, q TelemetryQuery) ([]Telemetry, error)
	Latest(ctx context.Context, greenhouseID string) (*Telemetry, error)
	Insert(ctx context.Context, reading *Telemetry) error
}

// SQLiteTelemetryRepository implements TelemetryRepository using SQLite.
type SQLiteTelemetryRepository struct {
	db *sql.DB
}

// NewTelemetryRepository creates a new SQLite-backed telemetry repository.
func NewTelemetryRepository(db *sql.DB) *SQLiteTelemetryRepository {
	return &SQLiteTelemetryRepository{db: db}
}

const telemetryColumns = "time, greenhouse_id, sequence, temp_air, hum_air, lux, light_intensity, light_on, water_level_ok, pump_on"

// List returns readings within the query window, newest first, capped at
// q.Limit rows. Callers must Normalize and Validate q first.
func (r *SQLiteTelemetryRepository) List(ctx context.Context, greenhouseID string, q TelemetryQuery) ([]Telemetry, error) {
	query := "SELECT " + telemetryColumns + ` FROM telemetry WHERE greenhouse_id = ?`
	args := []any{greenhouseID}

	if q.Days != 0 {
		since := time.Now().UTC().AddDate(0, 0, -q.Days).Format(time.RFC3339)
		query += ` AND time >= ?`
		args = append(args, since)
	} else {
		if !q.Start.IsZero() {
			query += ` AND time >= ?`
			args = append(args, q.Start.UTC().Format(time.RFC3339))
		}
		if !q.End.IsZero() {
			query += ` AND time <= ?`
			args = append(args, q.End.UTC().Format(time.RFC3339))
		}
	}

	query += ` ORDER BY time DESC, sequence DESC LIMIT ?`
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing telemetry: %w", err)
	}
	defer rows.Close()

	var readings []Telemetry
	for rows.Next() {
		tr, err := scanTelemetry(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating telemetry: %w", err)
	}

	if readings == nil {
		readings = []Telemetry{}
	}
	return readings, nil
}

// Latest returns the most recent reading for a greenhouse, or nil when
// no telemetry has ever arrived.
func (r *SQLiteTelemetryRepository) Latest(ctx context.Context, greenhouseID string) (*Telemetry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+telemetryColumns+` FROM telemetry
		 WHERE greenhouse_id = ?
		 ORDER BY time DESC, sequence DESC
		 LIMIT 1`, greenhouseID)

	tr, err := scanTelemetry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tr, nil
}

// Insert stores one reading. A reading with the same (greenhouse, time,
// sequence) key as an existing row returns ErrDuplicateReading, which
// makes broker redeliveries harmless.
func (r *SQLiteTelemetryRepository) Insert(ctx context.Context, reading *Telemetry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO telemetry (time, greenhouse_id, sequence, temp_air, hum_air,
		                        lux, light_intensity, light_on, water_level_ok, pump_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.Time.UTC().Format(time.RFC3339), reading.GreenhouseID, reading.Sequence,
		nullFloat(reading.TempAir), nullFloat(reading.HumAir), nullFloat(reading.Lux),
		nullFloat(reading.LightIntensity),
		nullBool(reading.LightOn), nullBool(reading.WaterLevelOK), nullBool(reading.PumpOn),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReading
		}
		return fmt.Errorf("inserting telemetry: %w", err)
	}
	return nil
}

// scanTelemetry scans a reading from any scanner (Row or Rows).
func scanTelemetry(s scanner) (*Telemetry, error) {
	var tr Telemetry
	var ts string
	var tempAir, humAir, lux, lightIntensity sql.NullFloat64
	var lightOn, waterOK, pumpOn sql.NullInt64

	err := s.Scan(&ts, &tr.GreenhouseID, &tr.Sequence, &tempAir, &humAir, &lux,
		&lightIntensity, &lightOn, &waterOK, &pumpOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning telemetry: %w", err)
	}

	tr.Time, _ = time.Parse(time.RFC3339, ts) //nolint:errcheck // format is controlled
	tr.TempAir = floatPtr(tempAir)
	tr.HumAir = floatPtr(humAir)
	tr.Lux = floatPtr(lux)
	tr.LightIntensity = floatPtr(lightIntensity)
	tr.LightOn = boolPtr(lightOn)
	tr.WaterLevelOK = boolPtr(waterOK)
	tr.PumpOn = boolPtr(pumpOn)

	return &tr, nil
}

// Null conversion helpers for optional sensor fields.

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	var v int64
	if *b {
		v = 1
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func boolPtr(i sql.NullInt64) *bool {
	if !i.Valid {
		return nil
	}
	v := i.Int64 != 0
	return &v
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
