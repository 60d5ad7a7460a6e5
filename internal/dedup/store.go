package dedup

import (
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

// Store wraps a persistence backend. Load and Save never return errors:
// failures are logged and the caller keeps working from memory, which at
// worst re-notifies listings after a restart.
type Store struct {
	backend model.KnownStore
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	lastUpdated time.Time
}

// NewStore wraps backend.
func NewStore(backend model.KnownStore, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Load reads the persisted set, or returns an empty set if it is absent or unreadable.
func (s *Store) Load() Set {
	snap, err := s.backend.Load()
	if err != nil {
		s.logger.Error("failed to load known listings, starting empty", "error", err)
		return make(Set)
	}

	s.mu.Lock()
	s.lastUpdated = snap.LastUpdated
	s.mu.Unlock()

	known := NewSet(snap.IDs...)
	s.logger.Info("loaded known listings", "count", known.Len())
	return known
}

// Save writes the full set with the current timestamp.
func (s *Store) Save(known Set) {
	snap := model.Snapshot{IDs: known.Sorted(), LastUpdated: s.now()}
	if err := s.backend.Save(snap); err != nil {
		s.logger.Error("failed to save known listings", "count", known.Len(), "error", err)
		return
	}

	s.mu.Lock()
	s.lastUpdated = snap.LastUpdated
	s.mu.Unlock()
}

// LastUpdated returns the timestamp of the last successful load or save.
func (s *Store) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}
