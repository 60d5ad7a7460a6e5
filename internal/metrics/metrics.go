// Package metrics exposes Prometheus instruments for the detection loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cycle outcomes.
const (
	CycleNew       = "new"
	CycleUnchanged = "unchanged"
	CycleSkipped   = "skipped"
	CycleError     = "error"
)

// Notification outcomes.
const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
)

// Metrics groups the instruments. All methods are safe on a nil receiver so
// components can run without metrics in tests and one-shot commands.
type Metrics struct {
	cycles        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	newListings   prometheus.Counter
	known         prometheus.Gauge
	lastCheck     prometheus.Gauge
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listingwatch_cycles_total",
			Help: "Check cycles by outcome",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listingwatch_notifications_total",
			Help: "Outbound notification attempts by outcome",
		}, []string{"outcome"}),
		newListings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listingwatch_new_listings_total",
			Help: "Listings seen for the first time",
		}),
		known: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "listingwatch_known_listings",
			Help: "Size of the known-identifier set",
		}),
		lastCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "listingwatch_last_check_timestamp_seconds",
			Help: "Unix time of the last successful fetch",
		}),
	}
	reg.MustRegister(m.cycles, m.notifications, m.newListings, m.known, m.lastCheck)
	return m
}

func (m *Metrics) Cycle(outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) NewListings(n int) {
	if m == nil {
		return
	}
	m.newListings.Add(float64(n))
}

func (m *Metrics) Known(n int) {
	if m == nil {
		return
	}
	m.known.Set(float64(n))
}

func (m *Metrics) LastCheck(t time.Time) {
	if m == nil {
		return
	}
	m.lastCheck.Set(float64(t.Unix()))
}
