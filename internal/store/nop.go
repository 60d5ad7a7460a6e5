package store

import "github.com/amishk599/listingwatch/internal/model"

// NopStore is used by one-shot checks. It loads nothing and saves nothing,
// so every listing appears new and no state is written.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Load() (model.Snapshot, error) { return model.Snapshot{}, nil }
func (s *NopStore) Save(model.Snapshot) error      { return nil }
