package dashboard

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/amishk599/listingwatch/internal/notifier"
	"github.com/amishk599/listingwatch/internal/scheduler"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type pageListing struct {
	ID         string
	Title      string
	Location   string
	Commitment string
	Rate       string
	Posted     string
	URL        string
}

type pageData struct {
	Stats    scheduler.Stats
	Listings []pageListing
	Total    int
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	listings, total := s.monitor.Listings(jobsLimit)
	data := pageData{Stats: s.monitor.Stats(), Total: total}
	for _, l := range listings {
		data.Listings = append(data.Listings, pageListing{
			ID:         l.ID,
			Title:      notifier.OrDefault(l.Title, "Unknown Title"),
			Location:   notifier.OrDefault(l.Location, "Unknown"),
			Commitment: notifier.OrDefault(l.Commitment, "Unknown"),
			Rate:       notifier.FormatRate(l.RateMin, l.RateMax),
			Posted:     notifier.FormatPosted(l.CreatedAt),
			URL:        s.monitor.JobURL(l.ID),
		})
	}

	// Render to a buffer so a template error doesn't leave a half-written page.
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
