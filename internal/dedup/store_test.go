package dedup

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memBackend struct {
	snap    model.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (b *memBackend) Load() (model.Snapshot, error) { return b.snap, b.loadErr }

func (b *memBackend) Save(s model.Snapshot) error {
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.snap = s
	return nil
}

func TestStore_LoadError_ReturnsEmpty(t *testing.T) {
	s := NewStore(&memBackend{loadErr: errors.New("corrupt")}, discardLogger())
	if got := s.Load(); got.Len() != 0 {
		t.Errorf("Load = %v, want empty", got.Sorted())
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	backend := &memBackend{}
	s := NewStore(backend, discardLogger())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Save(NewSet("b", "a"))

	if got := backend.snap.IDs; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("saved IDs = %v, want [a b]", got)
	}
	if !s.LastUpdated().Equal(fixed) {
		t.Errorf("LastUpdated = %v, want %v", s.LastUpdated(), fixed)
	}

	loaded := NewStore(backend, discardLogger()).Load()
	if loaded.Len() != 2 || !loaded.Has("a") {
		t.Errorf("Load = %v, want [a b]", loaded.Sorted())
	}
}

func TestStore_SaveError_IsSwallowed(t *testing.T) {
	backend := &memBackend{saveErr: errors.New("disk full")}
	s := NewStore(backend, discardLogger())

	s.Save(NewSet("a"))

	if backend.saves != 1 {
		t.Errorf("saves = %d, want 1", backend.saves)
	}
	if !s.LastUpdated().IsZero() {
		t.Errorf("LastUpdated = %v, want zero after failed save", s.LastUpdated())
	}
}
