package greenhouse

import (
	"context"
	"testing"
	"time"
)

func TestConnectionQuery_NormalizeAndValidate(t *testing.T) {
	var q ConnectionQuery
	q.Normalize()
	if q.Limit != 50 {
		t.Errorf("default Limit = %d, want 50", q.Limit)
	}
	if problems := q.Validate(); len(problems) != 0 {
		t.Errorf("Validate() = %v, want default valid", problems)
	}

	if problems := (ConnectionQuery{Limit: -1}).Validate(); len(problems) == 0 {
		t.Error("Validate() should reject negative limit")
	}
	if problems := (ConnectionQuery{Limit: 501}).Validate(); len(problems) == 0 {
		t.Error("Validate() should reject limit above 500")
	}
}

func TestConnectionRepository_OpenAndList(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	start := time.Now().UTC().Truncate(time.Second)
	if err := repo.Open(ctx, gh.ID, start); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	q := ConnectionQuery{}
	q.Normalize()
	events, err := repo.List(ctx, gh.ID, q)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("List() returned %d events, want 1", len(events))
	}
	if !events[0].Start.Equal(start) {
		t.Errorf("Start = %v, want %v", events[0].Start, start)
	}
	if events[0].End != nil {
		t.Errorf("End = %v, want nil for open interval", events[0].End)
	}
}

func TestConnectionRepository_CloseEndsInterval(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	end := start.Add(30 * time.Minute)

	if err := repo.Open(ctx, gh.ID, start); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := repo.Close(ctx, gh.ID, end); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	q := ConnectionQuery{}
	q.Normalize()
	events, err := repo.List(ctx, gh.ID, q)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("List() returned %d events, want 1", len(events))
	}
	if events[0].End == nil || !events[0].End.Equal(end) {
		t.Errorf("End = %v, want %v", events[0].End, end)
	}
}

func TestConnectionRepository_ReopenClosesPrevious(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	first := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	second := first.Add(time.Hour)

	if err := repo.Open(ctx, gh.ID, first); err != nil {
		t.Fatalf("Open() first error = %v", err)
	}
	// Controller reconnects without the broker ever reporting offline
	if err := repo.Open(ctx, gh.ID, second); err != nil {
		t.Fatalf("Open() second error = %v", err)
	}

	q := ConnectionQuery{}
	q.Normalize()
	events, err := repo.List(ctx, gh.ID, q)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List() returned %d events, want 2", len(events))
	}
	// Newest first: the second interval is open, the first was force-closed
	if events[0].End != nil {
		t.Error("newest interval should be open")
	}
	if events[1].End == nil {
		t.Error("previous interval should have been closed on reopen")
	}
}

func TestConnectionRepository_Close_NoOpenInterval(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepository(db)

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	// Closing with nothing open is a no-op
	if err := repo.Close(context.Background(), gh.ID, time.Now()); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestConnectionRepository_List_Limit(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	owner := seedTestOwner(t, db)
	gh := seedTestGreenhouse(t, db, owner, "")

	base := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		if err := repo.Open(ctx, gh.ID, start); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
	}

	events, err := repo.List(ctx, gh.ID, ConnectionQuery{Limit: 3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("List() returned %d events, want 3", len(events))
	}
}
