package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Cycle(CycleNew)
	m.Cycle(CycleNew)
	m.Cycle(CycleSkipped)
	m.Notification(NotifySent)
	m.NewListings(3)
	m.Known(7)
	m.LastCheck(time.Unix(1700000000, 0))

	if got := testutil.ToFloat64(m.cycles.WithLabelValues(CycleNew)); got != 2 {
		t.Errorf("cycles{new} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues(CycleSkipped)); got != 1 {
		t.Errorf("cycles{skipped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues(NotifySent)); got != 1 {
		t.Errorf("notifications{sent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.newListings); got != 3 {
		t.Errorf("new listings = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.known); got != 7 {
		t.Errorf("known = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.lastCheck); got != 1700000000 {
		t.Errorf("last check = %v", got)
	}
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	m.Cycle(CycleError)
	m.Notification(NotifyFailed)
	m.NewListings(1)
	m.Known(1)
	m.LastCheck(time.Now())
}
