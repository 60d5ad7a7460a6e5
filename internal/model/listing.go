package model

import (
	"context"
	"encoding/json"
	"time"
)

// Listing is one job posting as returned by the listing source.
type Listing struct {
	ID          string   `json:"listingId"`
	Title       string   `json:"title"`
	RateMin     *float64 `json:"rateMin"`
	RateMax     *float64 `json:"rateMax"`
	Location    string   `json:"location"`
	Commitment  string   `json:"commitment"`
	CreatedAt   string   `json:"createdAt"` // ISO-8601, may be empty
	Description string   `json:"description"`

	// Raw keeps the record exactly as received so the dashboard can echo
	// fields this type does not model.
	Raw map[string]any `json:"-"`
}

type listingAlias Listing

// UnmarshalJSON decodes the modeled fields and keeps the full record in Raw.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var a listingAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Listing(a)
	l.Raw = raw
	return nil
}

// MarshalJSON writes the original record when one was decoded.
func (l Listing) MarshalJSON() ([]byte, error) {
	if l.Raw != nil {
		return json.Marshal(l.Raw)
	}
	return json.Marshal(listingAlias(l))
}

// Snapshot is the persisted form of the known-identifier set.
type Snapshot struct {
	IDs         []string
	LastUpdated time.Time // zero if never saved or unparsable
}

// ListingFetcher fetches the current listings from a source.
type ListingFetcher interface {
	FetchListings(ctx context.Context) ([]Listing, error)
}

// Notifier delivers a single text message to one destination.
type Notifier interface {
	// Configured reports whether Send will reach a real destination.
	Configured() bool
	Send(ctx context.Context, text string) error
}

// KnownStore persists the set of listing IDs that were already notified.
type KnownStore interface {
	Load() (Snapshot, error)
	Save(s Snapshot) error
}
