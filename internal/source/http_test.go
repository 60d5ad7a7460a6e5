package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

const sampleResponse = `[
  {
    "listingId": "list_AAA",
    "title": "Software Engineer",
    "rateMin": 40,
    "rateMax": 80,
    "location": "Remote",
    "commitment": "full-time",
    "createdAt": "2025-03-01T12:30:00Z",
    "description": "Build things."
  },
  {
    "listingId": "list_BBB",
    "title": "Data Labeler",
    "rateMin": 20,
    "location": "US",
    "commitment": "part-time"
  },
  {
    "title": "No identifier"
  }
]`

func TestHTTPSource_FetchListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, srv.Client())
	listings, err := s.FetchListings(context.Background())
	if err != nil {
		t.Fatalf("FetchListings: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("got %d listings, want 3", len(listings))
	}

	first := listings[0]
	if first.ID != "list_AAA" {
		t.Errorf("ID = %q, want list_AAA", first.ID)
	}
	if first.RateMin == nil || *first.RateMin != 40 || first.RateMax == nil || *first.RateMax != 80 {
		t.Errorf("rates = %v/%v, want 40/80", first.RateMin, first.RateMax)
	}
	if first.CreatedAt != "2025-03-01T12:30:00Z" {
		t.Errorf("CreatedAt = %q", first.CreatedAt)
	}
	if listings[1].RateMax != nil {
		t.Errorf("second listing RateMax = %v, want nil", *listings[1].RateMax)
	}
	if listings[2].ID != "" {
		t.Errorf("third listing ID = %q, want empty", listings[2].ID)
	}
}

func TestHTTPSource_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, srv.Client())
	_, err := s.FetchListings(context.Background())

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", httpErr.StatusCode)
	}
}

func TestHTTPSource_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, srv.Client())
	_, err := s.FetchListings(context.Background())
	if !errors.Is(err, model.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	s := NewHTTPSource(srv.URL, client)
	if _, err := s.FetchListings(context.Background()); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
