package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

func TestJSONStore_MissingFileIsEmpty(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "known_jobs.json"))

	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.IDs) != 0 {
		t.Errorf("IDs = %v, want empty", snap.IDs)
	}
}

func TestJSONStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_jobs.json")
	s := NewJSONStore(path)
	when := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	if err := s.Save(model.Snapshot{IDs: []string{"a", "b"}, LastUpdated: when}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"job_ids"`) || !strings.Contains(string(data), `"last_updated"`) {
		t.Errorf("file missing expected keys: %s", data)
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

func TestJSONStore_ReadsZonelessTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_jobs.json")
	content := `{"job_ids": ["x"], "last_updated": "2025-06-01T10:20:30.123456"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.IDs) != 1 || snap.IDs[0] != "x" {
		t.Errorf("IDs = %v, want [x]", snap.IDs)
	}
	if snap.LastUpdated.IsZero() || snap.LastUpdated.Year() != 2025 {
		t.Errorf("LastUpdated = %v, want 2025-06-01", snap.LastUpdated)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_jobs.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONStore(path).Load(); err == nil {
		t.Fatal("expected parse error for corrupt file")
	}
}

func TestJSONStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(filepath.Join(dir, "known_jobs.json"))

	for i := 0; i < 3; i++ {
		if err := s.Save(model.Snapshot{IDs: []string{"a"}}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}
