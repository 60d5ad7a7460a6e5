package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

// Ensure JSONStore implements model.KnownStore.
var _ model.KnownStore = (*JSONStore)(nil)

// JSONStore keeps the known set in a single JSON document:
//
//	{"job_ids": ["..."], "last_updated": "2026-01-02T03:04:05Z"}
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is
// created on first Save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

type jsonSnapshot struct {
	JobIDs      []string `json:"job_ids"`
	LastUpdated string   `json:"last_updated,omitempty"`
}

// Timestamp layouts accepted on read. Older files were written without a zone.
var lastUpdatedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Load reads the snapshot. A missing file yields an empty snapshot and no error.
func (s *JSONStore) Load() (model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Snapshot{}, nil
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var raw jsonSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Snapshot{}, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	return model.Snapshot{
		IDs:         raw.JobIDs,
		LastUpdated: parseLastUpdated(raw.LastUpdated),
	}, nil
}

// Save replaces the file atomically (write to a temp file, then rename).
func (s *JSONStore) Save(snap model.Snapshot) error {
	raw := jsonSnapshot{JobIDs: snap.IDs}
	if raw.JobIDs == nil {
		raw.JobIDs = []string{}
	}
	if !snap.LastUpdated.IsZero() {
		raw.LastUpdated = snap.LastUpdated.Format(time.RFC3339Nano)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

func parseLastUpdated(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range lastUpdatedLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
