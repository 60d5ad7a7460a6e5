package dashboard

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/notifier"
)

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	listings, _ := s.monitor.Listings(0)
	feed := s.buildFeed(listings, baseURL(r), time.Now())

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("failed to render RSS feed", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

// buildFeed converts the last fetch into an RSS feed, one item per listing
// that has an identifier.
func (s *Server) buildFeed(listings []model.Listing, base string, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "listingwatch",
		Link:        &feeds.Link{Href: base + "/"},
		Description: "Listings from the most recent check",
		Created:     now,
	}

	for _, l := range listings {
		if l.ID == "" {
			continue
		}
		item := &feeds.Item{
			Id:          l.ID,
			Title:       notifier.OrDefault(l.Title, "Unknown Title"),
			Link:        &feeds.Link{Href: s.monitor.JobURL(l.ID)},
			Description: itemDescription(l),
		}
		if t, ok := notifier.ParsePosted(l.CreatedAt); ok {
			item.Created = t.UTC()
		}
		feed.Items = append(feed.Items, item)
	}
	return feed
}

func itemDescription(l model.Listing) string {
	parts := []string{
		notifier.FormatRate(l.RateMin, l.RateMax),
		notifier.OrDefault(l.Location, "Unknown"),
	}
	if l.Commitment != "" {
		parts = append(parts, l.Commitment)
	}
	desc := strings.Join(parts, " · ")
	if d := notifier.TruncateDescription(l.Description); d != "" {
		desc = fmt.Sprintf("%s\n\n%s", desc, d)
	}
	return desc
}
