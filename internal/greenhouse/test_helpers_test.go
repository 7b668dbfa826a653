package greenhouse

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the domain schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "greenhouse-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE timezones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tz_name TEXT NOT NULL,
			utc_offset INTEGER NOT NULL
		) STRICT;

		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			google_sub TEXT UNIQUE,
			display_name TEXT,
			timezone_id INTEGER,
			password_hash TEXT,
			phone_country_code TEXT,
			phone_number TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			last_login_at TEXT,
			FOREIGN KEY (timezone_id) REFERENCES timezones(id)
		) STRICT;

		CREATE TABLE greenhouses (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			last_seen TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE setpoints (
			greenhouse_id TEXT PRIMARY KEY,
			target_temp_min REAL,
			target_temp_max REAL,
			target_hum_air_max REAL,
			irrigation_interval_minutes INTEGER,
			irrigation_duration_seconds INTEGER,
			target_light_intensity REAL,
			changed_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (greenhouse_id) REFERENCES greenhouses(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE telemetry (
			time TEXT NOT NULL,
			greenhouse_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			temp_air REAL,
			hum_air REAL,
			lux REAL,
			light_intensity REAL,
			light_on INTEGER,
			water_level_ok INTEGER,
			pump_on INTEGER,
			PRIMARY KEY (greenhouse_id, time, sequence),
			FOREIGN KEY (greenhouse_id) REFERENCES greenhouses(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE connection_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			greenhouse_id TEXT NOT NULL,
			start_ts TEXT NOT NULL,
			end_ts TEXT,
			FOREIGN KEY (greenhouse_id) REFERENCES greenhouses(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE plants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			target_temp_min REAL,
			target_temp_max REAL,
			target_hum_air_max REAL,
			irrigation_interval_minutes INTEGER,
			irrigation_duration_seconds INTEGER,
			target_light_intensity REAL
		) STRICT;

		INSERT INTO timezones (tz_name, utc_offset) VALUES ('Europe/London', 0);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying domain schema: %v", err)
	}

	return db
}

// seedTestOwner inserts a user row and returns its ID.
func seedTestOwner(t *testing.T, db *sql.DB) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO users (id, email, display_name, timezone_id, password_hash)
		 VALUES (?, ?, 'Owner', 1, 'x')`,
		id, id+"@example.com")
	if err != nil {
		t.Fatalf("seeding owner: %v", err)
	}
	return id
}

// seedTestGreenhouse inserts a greenhouse for the owner and returns it.
func seedTestGreenhouse(t *testing.T, db *sql.DB, ownerID, name string) *Greenhouse {
	t.Helper()

	repo := NewRepository(db)
	gh := &Greenhouse{OwnerID: ownerID, Name: name}
	if err := repo.Create(context.Background(), gh); err != nil {
		t.Fatalf("seeding greenhouse: %v", err)
	}
	return gh
}

// seedTestReading inserts one telemetry row.
func seedTestReading(t *testing.T, db *sql.DB, greenhouseID string, ts time.Time, seq int64, tempAir float64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO telemetry (time, greenhouse_id, sequence, temp_air)
		 VALUES (?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339), greenhouseID, seq, tempAir)
	if err != nil {
		t.Fatalf("seeding telemetry: %v", err)
	}
}

// validSetpointInput returns a SetpointInput that passes validation.
func validSetpointInput() SetpointInput {
	tempMin := 18.0
	tempMax := 26.0
	humMax := 70.0
	interval := int64(120)
	duration := int64(30)
	light := float64(20000)
	return SetpointInput{
		TargetTempMin:             &tempMin,
		TargetTempMax:             &tempMax,
		TargetHumAirMax:           &humMax,
		IrrigationIntervalMinutes: &interval,
		IrrigationDurationSeconds: &duration,
		TargetLightIntensity:      &light,
	}
}
