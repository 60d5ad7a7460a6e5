package notifier

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/amishk599/listingwatch/internal/model"
)

// DefaultJobURLTemplate builds the apply link from a listing ID.
const DefaultJobURLTemplate = "https://work.mercor.com/jobs/%s"

// maxDescriptionRunes is where long descriptions are cut before the ellipsis.
const maxDescriptionRunes = 300

// Formatter renders notification text as Telegram HTML (<b>, <i>, <a href>).
// Other notifiers convert from that markup.
type Formatter struct {
	jobURLTemplate string
}

// NewFormatter returns a formatter that builds apply links from tmpl, which
// must contain one %s verb. An empty tmpl selects DefaultJobURLTemplate.
func NewFormatter(tmpl string) *Formatter {
	if tmpl == "" {
		tmpl = DefaultJobURLTemplate
	}
	return &Formatter{jobURLTemplate: tmpl}
}

// JobURL returns the apply link for id, or "" when id is empty.
func (f *Formatter) JobURL(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(f.jobURLTemplate, id)
}

// Listing renders the new-listing alert for l.
func (f *Formatter) Listing(l model.Listing) string {
	title := OrDefault(l.Title, "Unknown Title")
	location := OrDefault(l.Location, "Unknown")
	commitment := titleCase(OrDefault(l.Commitment, "Unknown"))

	var b strings.Builder
	b.WriteString("🆕 <b>New Job Alert!</b>\n\n")
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "💰 %s\n", FormatRate(l.RateMin, l.RateMax))
	fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(location))
	fmt.Fprintf(&b, "⏰ %s\n", html.EscapeString(commitment))
	fmt.Fprintf(&b, "📅 Posted: %s\n", FormatPosted(l.CreatedAt))

	if desc := TruncateDescription(l.Description); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(desc))
	}

	b.WriteString("\n")
	if url := f.JobURL(l.ID); url != "" {
		fmt.Fprintf(&b, "🔗 <a href=\"%s\">Apply Here</a>\n", html.EscapeString(url))
	}
	fmt.Fprintf(&b, "<i>Job ID: %s</i>", html.EscapeString(l.ID))
	return b.String()
}

// Summary is sent after a batch that found more than one new listing.
func (f *Formatter) Summary(n int) string {
	return fmt.Sprintf("📊 Summary: %d new jobs found!", n)
}

// Startup announces the monitor together with its check interval.
func (f *Formatter) Startup(interval time.Duration) string {
	return fmt.Sprintf("🤖 Job Monitor Started!\nMonitoring listings every %d seconds...", int(interval.Seconds()))
}

// Shutdown announces that the monitor stopped.
func (f *Formatter) Shutdown() string {
	return "🛑 Job Monitor Stopped"
}

// Test is the message sent by manual notifier checks.
func (f *Formatter) Test() string {
	return "🧪 Test message from listingwatch"
}

// FormatRate renders an hourly rate range. Missing and zero values count as absent.
func FormatRate(rateMin, rateMax *float64) string {
	hasMin := rateMin != nil && *rateMin != 0
	hasMax := rateMax != nil && *rateMax != 0
	switch {
	case hasMin && hasMax:
		return fmt.Sprintf("$%s-$%s/hr", formatNumber(*rateMin), formatNumber(*rateMax))
	case hasMin:
		return fmt.Sprintf("$%s+/hr", formatNumber(*rateMin))
	default:
		return "Rate not specified"
	}
}

var postedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePosted parses an ISO-8601 creation timestamp. Timestamps without a
// zone are read as UTC.
func ParsePosted(createdAt string) (time.Time, bool) {
	createdAt = strings.TrimSpace(createdAt)
	if createdAt == "" {
		return time.Time{}, false
	}
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, createdAt); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatPosted renders an ISO-8601 timestamp as "YYYY-MM-DD HH:MM UTC".
// Empty or unparsable input gives "Unknown".
func FormatPosted(createdAt string) string {
	t, ok := ParsePosted(createdAt)
	if !ok {
		return "Unknown"
	}
	return t.Format("2006-01-02 15:04") + " UTC"
}

// TruncateDescription cuts desc to 300 characters and appends "..." when it was longer.
func TruncateDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) <= maxDescriptionRunes {
		return desc
	}
	return string(runes[:maxDescriptionRunes]) + "..."
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OrDefault returns def when s is blank.
func OrDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// titleCase upper-cases the first letter of every word, where a word is a
// run of letters ("full-time" -> "Full-Time").
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if prevLetter {
				out[i] = unicode.ToLower(r)
			} else {
				out[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(out)
}
