package greenhouse

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSetpointRepository_UpsertAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewSetpointRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	sp := validSetpointInput().Setpoint(gh.ID)
	if err := repo.Upsert(ctx, &sp); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if sp.ChangedAt.IsZero() {
		t.Error("Upsert() should stamp ChangedAt")
	}

	got, err := repo.Get(ctx, gh.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TargetTempMin != 18.0 {
		t.Errorf("TargetTempMin = %v, want 18", got.TargetTempMin)
	}
	if got.IrrigationIntervalMinutes != 120 {
		t.Errorf("IrrigationIntervalMinutes = %v, want 120", got.IrrigationIntervalMinutes)
	}
}

func TestSetpointRepository_Get_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewSetpointRepository(db)

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	_, err := repo.Get(context.Background(), gh.ID)
	if !errors.Is(err, ErrSetpointNotFound) {
		t.Errorf("error = %v, want ErrSetpointNotFound", err)
	}
}

func TestSetpointRepository_UpsertReplaces(t *testing.T) {
	db := testDB(t)
	repo := NewSetpointRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	first := validSetpointInput().Setpoint(gh.ID)
	if err := repo.Upsert(ctx, &first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	second := validSetpointInput().Setpoint(gh.ID)
	second.TargetTempMax = 30.0
	if err := repo.Upsert(ctx, &second); err != nil {
		t.Fatalf("Upsert() second error = %v", err)
	}

	got, err := repo.Get(ctx, gh.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TargetTempMax != 30.0 {
		t.Errorf("TargetTempMax = %v, want 30", got.TargetTempMax)
	}

	// Still exactly one row
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM setpoints WHERE greenhouse_id = ?", gh.ID).Scan(&count); err != nil {
		t.Fatalf("counting setpoints: %v", err)
	}
	if count != 1 {
		t.Errorf("setpoint rows = %d, want 1", count)
	}
}

func TestSetpointRepository_UpsertRefreshesChangedAt(t *testing.T) {
	db := testDB(t)
	repo := NewSetpointRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	sp := validSetpointInput().Setpoint(gh.ID)
	if err := repo.Upsert(ctx, &sp); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Backdate the stored changed_at, then re-write identical values.
	old := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	if _, err := db.Exec("UPDATE setpoints SET changed_at = ? WHERE greenhouse_id = ?", old, gh.ID); err != nil {
		t.Fatalf("backdating changed_at: %v", err)
	}

	again := validSetpointInput().Setpoint(gh.ID)
	if err := repo.Upsert(ctx, &again); err != nil {
		t.Fatalf("Upsert() again error = %v", err)
	}

	got, err := repo.Get(ctx, gh.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ChangedAt.Before(time.Now().UTC().Add(-time.Minute)) {
		t.Errorf("ChangedAt = %v, want refreshed even for identical values", got.ChangedAt)
	}
}

func TestSetpointRepository_ChangedAtStrictlyIncreases(t *testing.T) {
	db := testDB(t)
	repo := NewSetpointRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	// Two writes land within the same second; the stored timestamp must
	// still move forward between them.
	sp := validSetpointInput().Setpoint(gh.ID)
	if err := repo.Upsert(ctx, &sp); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	first := sp.ChangedAt

	if err := repo.Upsert(ctx, &sp); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if !sp.ChangedAt.After(first) {
		t.Errorf("ChangedAt did not strictly increase: first=%v second=%v", first, sp.ChangedAt)
	}

	got, err := repo.Get(ctx, gh.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.ChangedAt.After(first) {
		t.Errorf("stored ChangedAt = %v, want after %v", got.ChangedAt, first)
	}
}

func TestSetpointRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewSetpointRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	sp := validSetpointInput().Setpoint(gh.ID)
	if err := repo.Upsert(ctx, &sp); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.Delete(ctx, gh.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.Get(ctx, gh.ID); !errors.Is(err, ErrSetpointNotFound) {
		t.Errorf("error = %v, want ErrSetpointNotFound", err)
	}
}
