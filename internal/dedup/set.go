// Package dedup holds the known-identifier set and the load/save contract
// that keeps persistence failures from reaching the detection loop.
package dedup

import (
	"slices"

	"github.com/samber/lo"

	"github.com/amishk599/listingwatch/internal/model"
)

// Set is a set of listing identifiers.
type Set map[string]struct{}

// NewSet builds a set from ids. Empty strings are dropped.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers.
func (s Set) Len() int { return len(s) }

// Sorted returns the identifiers in lexical order.
func (s Set) Sorted() []string {
	ids := lo.Keys(s)
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs extracts the identifiers of listings that carry one.
func IDs(listings []model.Listing) Set {
	return NewSet(lo.FilterMap(listings, func(l model.Listing, _ int) (string, bool) {
		return l.ID, l.ID != ""
	})...)
}

// Diff returns current minus known.
func Diff(current, known Set) Set {
	out := make(Set)
	for id := range current {
		if !known.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Merge returns a new set holding every identifier of existing and added.
func Merge(existing, added Set) Set {
	out := existing.Clone()
	for id := range added {
		out[id] = struct{}{}
	}
	return out
}
