package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/verdant-labs/greenhouse-core/internal/auth"
	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/config"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/database"
	"github.com/verdant-labs/greenhouse-core/internal/infrastructure/logging"
	"github.com/verdant-labs/greenhouse-core/internal/metrics"

	_ "github.com/verdant-labs/greenhouse-core/migrations"
)

const testJWTSecret = "test-secret-0123456789abcdef0123456789abcdef"

// testServer bundles the server under test with direct repository access
// for seeding and verification.
type testServer struct {
	srv     *Server
	handler http.Handler
	db      *database.DB
	users   auth.UserRepository
}

// newTestServer builds a fully wired server over a fresh migrated database.
// MQTT and the notifier are absent, matching a broker outage.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	users := auth.NewUserRepository(db.DB)

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			RateLimit: config.RateLimitConfig{
				Enabled: false,
			},
		},
		Logger:      logging.Default(),
		DB:          db,
		Metrics:     metrics.Noop{},
		Users:       users,
		Greenhouses: greenhouse.NewRepository(db.DB),
		Setpoints:   greenhouse.NewSetpointRepository(db.DB),
		Telemetry:   greenhouse.NewTelemetryRepository(db.DB),
		Connections: greenhouse.NewConnectionRepository(db.DB),
		Catalog:     greenhouse.NewCatalogRepository(db.DB),
		JWTSecret:   testJWTSecret,
		TokenTTL:    time.Hour,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testServer{
		srv:     srv,
		handler: srv.buildRouter(),
		db:      db,
		users:   users,
	}
}

// request performs an HTTP request against the in-process router. A non-nil
// body is JSON-encoded; a non-empty token becomes the Bearer credential.
func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// registerUser creates an account through the API and returns its id and
// session token.
func (ts *testServer) registerUser(t *testing.T, email string) (userID, token string) {
	t.Helper()

	rec := ts.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":        email,
		"password":     "grow-things-1",
		"display_name": "Test Grower",
		"timezone_id":  1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp authResponse
	decodeBody(t, rec, &resp)
	return resp.UserID, resp.Token
}

// createGreenhouse makes a greenhouse through the API and returns its id.
func (ts *testServer) createGreenhouse(t *testing.T, token, name string) string {
	t.Helper()

	rec := ts.request(t, http.MethodPost, "/api/greenhouses", token, map[string]any{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create greenhouse returned %d: %s", rec.Code, rec.Body.String())
	}

	var gh greenhouse.Greenhouse
	decodeBody(t, rec, &gh)
	return gh.ID
}

// seedReading inserts a telemetry row directly, bypassing the ingest path.
func (ts *testServer) seedReading(t *testing.T, greenhouseID string, at time.Time, sequence int64, temp float64) {
	t.Helper()

	_, err := ts.db.Exec(
		`INSERT INTO telemetry (time, greenhouse_id, sequence, temp_air) VALUES (?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339), greenhouseID, sequence, temp,
	)
	if err != nil {
		t.Fatalf("seeding telemetry: %v", err)
	}
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// decodeError unmarshals the error envelope.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var e apiError
	decodeBody(t, rec, &e)
	return e
}
