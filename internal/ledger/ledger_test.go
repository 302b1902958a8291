package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dokzlo13/vibed/internal/db"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "ledger.sqlite"))
	if err != nil {
		t.Fatalf("db.Open() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.DB)
}

func TestLedger_AppendAndRecent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{RequestID: "r1", Action: "getLights", Selector: "label:Vibes", Status: 200, Result: ResultOK, Duration: 12, Timestamp: base},
		{RequestID: "r2", Action: "breathe", Selector: "label:Vibes", Status: 400, Result: ResultRejected, Error: "Breathe effect is disabled", Timestamp: base.Add(time.Second)},
		{Action: "setState", Selector: "all", Status: 500, Result: ResultFailed, Error: "lifx set state: unexpected status 401", Timestamp: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := l.Append(ctx, e); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	got, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() = %d entries, want 3", len(got))
	}

	if got[0].Action != "setState" || got[1].Action != "breathe" || got[2].Action != "getLights" {
		t.Errorf("order = %s, %s, %s; want newest first", got[0].Action, got[1].Action, got[2].Action)
	}
	if got[0].Error != "lifx set state: unexpected status 401" || got[0].Result != ResultFailed {
		t.Errorf("failed entry = %+v", got[0])
	}
	if got[2].RequestID != "r1" || got[2].Duration != 12 || !got[2].Timestamp.Equal(base) {
		t.Errorf("first entry = %+v", got[2])
	}

	limited, err := l.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent(1) error: %v", err)
	}
	if len(limited) != 1 || limited[0].Action != "setState" {
		t.Errorf("Recent(1) = %+v", limited)
	}
}

func TestLedger_RecentEmpty(t *testing.T) {
	l := newTestLedger(t)

	got, err := l.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recent() = %v, want empty non-nil slice", got)
	}
}

func TestLedger_DefaultTimestamp(t *testing.T) {
	l := newTestLedger(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	if err := l.Append(context.Background(), Entry{Action: "togglePower", Selector: "all", Status: 200, Result: ResultOK}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	got, err := l.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if !got[0].Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, fixed)
	}
}

func TestLedger_DeleteOlderThan(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	old := Entry{Action: "getLights", Selector: "all", Status: 200, Result: ResultOK, Timestamp: now.Add(-48 * time.Hour)}
	fresh := Entry{Action: "getLights", Selector: "all", Status: 200, Result: ResultOK, Timestamp: now.Add(-time.Hour)}
	for _, e := range []Entry{old, fresh} {
		if err := l.Append(ctx, e); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	deleted, err := l.DeleteOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	remaining, _ := l.Recent(ctx, 10)
	if len(remaining) != 1 || !remaining[0].Timestamp.Equal(fresh.Timestamp) {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestLedger_RunCleanupStopsOnCancel(t *testing.T) {
	l := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.RunCleanup(ctx, time.Hour, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}
}
