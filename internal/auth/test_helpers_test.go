package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the user schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
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

		CREATE UNIQUE INDEX idx_users_email ON users(email);

		INSERT INTO timezones (tz_name, utc_offset) VALUES ('Europe/London', 0);
		INSERT INTO timezones (tz_name, utc_offset) VALUES ('Europe/Madrid', 1);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying user schema: %v", err)
	}

	return db
}

// seedTestUser inserts a test user and returns it.
func seedTestUser(t *testing.T, db *sql.DB, email string) *User {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Email:        email,
		DisplayName:  "Test User",
		TimezoneID:   1,
		PasswordHash: hash,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return user
}
