package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/listingwatch/internal/model"
)

// Ensure HTTPSource implements model.ListingFetcher.
var _ model.ListingFetcher = (*HTTPSource)(nil)

// HTTPSource fetches listings with a single GET against a JSON endpoint that
// returns an array of listing records.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource returns a source for url. The client's Timeout bounds each fetch.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

// URL returns the endpoint this source polls.
func (s *HTTPSource) URL() string { return s.url }

// FetchListings performs one GET and decodes the listing array.
// Non-200 responses return *model.HTTPError; malformed bodies wrap model.ErrDecode.
func (s *HTTPSource) FetchListings(ctx context.Context) ([]model.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("fetch listings: unexpected status %d", resp.StatusCode),
		}
	}

	var listings []model.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, fmt.Errorf("fetch listings: %w: %v", model.ErrDecode, err)
	}
	return listings, nil
}
