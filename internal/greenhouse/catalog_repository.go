package greenhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CatalogRepository serves the read-only reference data: plant setpoint
// templates and the timezone list users pick from at registration.
type CatalogRepository interface {
	ListPlants(ctx context.Context) ([]Plant, error)
	GetPlant(ctx context.Context, id string) (*Plant, error)
	ListTimezones(ctx context.Context) ([]Timezone, error)
	GetTimezone(ctx context.Context, id int64) (*Timezone, error)
}

// SQLiteCatalogRepository implements CatalogRepository using SQLite.
type SQLiteCatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new SQLite-backed catalog repository.
func NewCatalogRepository(db *sql.DB) *SQLiteCatalogRepository {
	return &SQLiteCatalogRepository{db: db}
}

const plantColumns = "id, name, description, target_temp_min, target_temp_max, target_hum_air_max, irrigation_interval_minutes, irrigation_duration_seconds, target_light_intensity"

// ListPlants returns all plant templates ordered by name.
func (r *SQLiteCatalogRepository) ListPlants(ctx context.Context) ([]Plant, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+plantColumns+" FROM plants ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing plants: %w", err)
	}
	defer rows.Close()

	var plants []Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plants: %w", err)
	}

	if plants == nil {
		plants = []Plant{}
	}
	return plants, nil
}

// GetPlant retrieves one plant template by ID.
func (r *SQLiteCatalogRepository) GetPlant(ctx context.Context, id string) (*Plant, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+plantColumns+" FROM plants WHERE id = ?", id)
	return scanPlant(row)
}

// ListTimezones returns the full timezone reference table.
func (r *SQLiteCatalogRepository) ListTimezones(ctx context.Context) ([]Timezone, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, tz_name, utc_offset FROM timezones ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing timezones: %w", err)
	}
	defer rows.Close()

	var zones []Timezone
	for rows.Next() {
		var tz Timezone
		if err := rows.Scan(&tz.ID, &tz.TzName, &tz.UTCOffset); err != nil {
			return nil, fmt.Errorf("scanning timezone: %w", err)
		}
		zones = append(zones, tz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timezones: %w", err)
	}

	if zones == nil {
		zones = []Timezone{}
	}
	return zones, nil
}

// GetTimezone retrieves one timezone row by ID. Registration uses it to
// verify the submitted timezone_id exists.
func (r *SQLiteCatalogRepository) GetTimezone(ctx context.Context, id int64) (*Timezone, error) {
	var tz Timezone
	err := r.db.QueryRowContext(ctx,
		"SELECT id, tz_name, utc_offset FROM timezones WHERE id = ?", id).
		Scan(&tz.ID, &tz.TzName, &tz.UTCOffset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimezoneNotFound
		}
		return nil, fmt.Errorf("scanning timezone: %w", err)
	}
	return &tz, nil
}

// scanPlant scans a plant from any scanner (Row or Rows).
func scanPlant(s scanner) (*Plant, error) {
	var p Plant
	var tempMin, tempMax, humMax, light sql.NullFloat64
	var interval, duration sql.NullInt64

	err := s.Scan(&p.ID, &p.Name, &p.Description, &tempMin, &tempMax, &humMax,
		&interval, &duration, &light)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("scanning plant: %w", err)
	}

	p.TargetTempMin = floatPtr(tempMin)
	p.TargetTempMax = floatPtr(tempMax)
	p.TargetHumAirMax = floatPtr(humMax)
	p.TargetLightIntensity = floatPtr(light)
	if interval.Valid {
		v := interval.Int64
		p.IrrigationIntervalMinutes = &v
	}
	if duration.Valid {
		v := duration.Int64
		p.IrrigationDurationSeconds = &v
	}

	return &p, nil
}
