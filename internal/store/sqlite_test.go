package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_EmptyLoad(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.IDs) != 0 || !snap.LastUpdated.IsZero() {
		t.Errorf("snap = %+v, want empty", snap)
	}
}

func TestSQLiteStore_SaveThenLoad(t *testing.T) {
	s := newTestStore(t)
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := s.Save(model.Snapshot{IDs: []string{"b", "a"}, LastUpdated: when}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.IDs) != 2 || snap.IDs[0] != "a" || snap.IDs[1] != "b" {
		t.Errorf("IDs = %v, want [a b]", snap.IDs)
	}
	if !snap.LastUpdated.Equal(when) {
		t.Errorf("LastUpdated = %v, want %v", snap.LastUpdated, when)
	}
}

func TestSQLiteStore_SaveIsIdempotentAndGrowOnly(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(model.Snapshot{IDs: []string{"a", "b"}}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	// A later snapshot missing "a" must not remove it.
	if err := s.Save(model.Snapshot{IDs: []string{"b", "c"}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.IDs) != 3 {
		t.Errorf("IDs = %v, want [a b c]", snap.IDs)
	}
	if snap.LastUpdated.IsZero() {
		t.Error("LastUpdated should default to now when snapshot time is zero")
	}
}

func TestNopStore(t *testing.T) {
	s := NewNopStore()
	if err := s.Save(model.Snapshot{IDs: []string{"a"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap, err := s.Load()
	if err != nil || len(snap.IDs) != 0 {
		t.Errorf("Load = %+v, %v; want empty, nil", snap, err)
	}
}
