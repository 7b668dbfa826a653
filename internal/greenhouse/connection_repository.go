package greenhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Connection event query bounds.
const (
	connectionLimitDefault = 50
	connectionLimitMax     = 500
)

// ConnectionQuery selects recent connectivity intervals.
type ConnectionQuery struct {
	Limit int
}

// Normalize applies the default limit when unset.
func (q *ConnectionQuery) Normalize() {
	if q.Limit == 0 {
		q.Limit = connectionLimitDefault
	}
}

// Validate checks the query bounds and returns field problems.
func (q ConnectionQuery) Validate() map[string]string {
	problems := make(map[string]string)
	if q.Limit < 1 || q.Limit > connectionLimitMax {
		problems["limit"] = "limit must be between 1 and 500"
	}
	return problems
}

// ConnectionRepository defines connection event persistence.
type ConnectionRepository interface {
	List(ctx context.Context, greenhouseID string, q ConnectionQuery) ([]ConnectionEvent, error)
	Open(ctx context.Context, greenhouseID string, start time.Time) error
	Close(ctx context.Context, greenhouseID string, end time.Time) error
}

// SQLiteConnectionRepository implements ConnectionRepository using SQLite.
type SQLiteConnectionRepository struct {
	db *sql.DB
}

// NewConnectionRepository creates a new SQLite-backed connection event repository.
func NewConnectionRepository(db *sql.DB) *SQLiteConnectionRepository {
	return &SQLiteConnectionRepository{db: db}
}

// List returns the most recent connectivity intervals, newest first.
// Callers must Normalize and Validate q first.
func (r *SQLiteConnectionRepository) List(ctx context.Context, greenhouseID string, q ConnectionQuery) ([]ConnectionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, greenhouse_id, start_ts, end_ts FROM connection_events
		 WHERE greenhouse_id = ?
		 ORDER BY start_ts DESC, id DESC
		 LIMIT ?`, greenhouseID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing connection events: %w", err)
	}
	defer rows.Close()

	var events []ConnectionEvent
	for rows.Next() {
		var ev ConnectionEvent
		var start string
		var end sql.NullString
		if err := rows.Scan(&ev.ID, &ev.GreenhouseID, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning connection event: %w", err)
		}
		ev.Start, _ = time.Parse(time.RFC3339, start) //nolint:errcheck // format is controlled
		if end.Valid {
			t, _ := time.Parse(time.RFC3339, end.String) //nolint:errcheck // format is controlled
			ev.End = &t
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection events: %w", err)
	}

	if events == nil {
		events = []ConnectionEvent{}
	}
	return events, nil
}

// Open records the start of a connectivity interval. Any interval still
// open for the greenhouse is closed first so intervals never overlap,
// which covers controllers that drop without the broker noticing.
func (r *SQLiteConnectionRepository) Open(ctx context.Context, greenhouseID string, start time.Time) error {
	ts := start.UTC().Format(time.RFC3339)

	if err := r.Close(ctx, greenhouseID, start); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO connection_events (greenhouse_id, start_ts) VALUES (?, ?)`,
		greenhouseID, ts)
	if err != nil {
		return fmt.Errorf("opening connection event: %w", err)
	}
	return nil
}

// Close ends any open connectivity interval for the greenhouse. Closing
// with nothing open is a no-op, so duplicate offline notices are harmless.
func (r *SQLiteConnectionRepository) Close(ctx context.Context, greenhouseID string, end time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE connection_events SET end_ts = ? WHERE greenhouse_id = ? AND end_ts IS NULL`,
		end.UTC().Format(time.RFC3339), greenhouseID)
	if err != nil {
		return fmt.Errorf("closing connection event: %w", err)
	}
	return nil
}
