package greenhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines greenhouse persistence.
type Repository interface {
	Create(ctx context.Context, gh *Greenhouse) error
	GetByID(ctx context.Context, id string) (*Greenhouse, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Greenhouse, error)
	Rename(ctx context.Context, id, name string) error
	UpdateLastSeen(ctx context.Context, id string, seen time.Time) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed greenhouse repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const greenhouseColumns = "id, owner_id, name, last_seen, created_at"

// Create inserts a new greenhouse. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, gh *Greenhouse) error {
	if gh.ID == "" {
		gh.ID = uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	gh.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO greenhouses (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)`,
		gh.ID, gh.OwnerID, gh.Name, now,
	)
	if err != nil {
		return fmt.Errorf("creating greenhouse: %w", err)
	}
	return nil
}

// GetByID retrieves a greenhouse by its unique ID. Ownership is the
// caller's concern; handlers compare OwnerID against the authenticated
// user before acting.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Greenhouse, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+greenhouseColumns+" FROM greenhouses WHERE id = ?", id)
	return scanGreenhouse(row)
}

// ListByOwner returns all greenhouses owned by a user, oldest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]Greenhouse, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+greenhouseColumns+" FROM greenhouses WHERE owner_id = ? ORDER BY created_at ASC, id ASC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing greenhouses: %w", err)
	}
	defer rows.Close()

	var list []Greenhouse
	for rows.Next() {
		gh, err := scanGreenhouse(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *gh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating greenhouses: %w", err)
	}

	if list == nil {
		list = []Greenhouse{}
	}
	return list, nil
}

// Rename updates a greenhouse's display name.
func (r *SQLiteRepository) Rename(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE greenhouses SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("renaming greenhouse: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrGreenhouseNotFound
	}
	return nil
}

// UpdateLastSeen stamps when the greenhouse's controller last reported.
func (r *SQLiteRepository) UpdateLastSeen(ctx context.Context, id string, seen time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE greenhouses SET last_seen = ? WHERE id = ?",
		seen.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating last seen: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrGreenhouseNotFound
	}
	return nil
}

// Delete removes a greenhouse. Setpoints, telemetry, and connection
// events cascade.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM greenhouses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting greenhouse: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrGreenhouseNotFound
	}
	return nil
}

// scanGreenhouse scans a greenhouse from any scanner (Row or Rows).
func scanGreenhouse(s scanner) (*Greenhouse, error) {
	var gh Greenhouse
	var lastSeen sql.NullString
	var createdAt string

	err := s.Scan(&gh.ID, &gh.OwnerID, &gh.Name, &lastSeen, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGreenhouseNotFound
		}
		return nil, fmt.Errorf("scanning greenhouse: %w", err)
	}

	gh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	if lastSeen.Valid {
		t, _ := time.Parse(time.RFC3339, lastSeen.String) //nolint:errcheck // format is controlled
		gh.LastSeen = &t
	}

	return &gh, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}
