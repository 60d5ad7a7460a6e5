package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/notifier"
	"github.com/amishk599/listingwatch/internal/poller"
)

var (
	// ErrAlreadyRunning is returned by Start when the loop is active.
	ErrAlreadyRunning = errors.New("monitor already running")
	// ErrNotRunning is returned by Stop when the loop is not active.
	ErrNotRunning = errors.New("monitor not running")
	// ErrNotConfigured is returned by SendTest when the notifier has no credentials.
	ErrNotConfigured = errors.New("notifier not configured")
	// ErrCyclePanic wraps a panic recovered from a check cycle.
	ErrCyclePanic = errors.New("check cycle panicked")
)

// State is the monitor lifecycle state.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the loop timings.
type Config struct {
	Interval   time.Duration
	ErrorDelay time.Duration
}

// Stats is the dashboard view of the monitor.
type Stats struct {
	MonitorRunning     bool   `json:"monitor_running"`
	Checking           bool   `json:"checking"`
	KnownJobsCount     int    `json:"known_jobs_count"`
	CheckInterval      int    `json:"check_interval"`
	LastCheck          string `json:"last_check"`
	CurrentJobsCount   int    `json:"current_jobs_count"`
	TelegramConfigured bool   `json:"telegram_configured"`
	LastUpdate         string `json:"last_update,omitempty"`
}

// Monitor owns the background check loop: it runs one cycle immediately
// after Start, then one per interval until Stop. Force checks from the
// dashboard go through the same poller and are serialized with the loop.
type Monitor struct {
	poller   *poller.ListingPoller
	notifier model.Notifier
	format   *notifier.Formatter
	cfg      Config
	logger   *slog.Logger

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}
}

// NewMonitor creates a monitor in the not-started state.
func NewMonitor(
	p *poller.ListingPoller,
	n model.Notifier,
	format *notifier.Formatter,
	cfg Config,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		poller:   p,
		notifier: n,
		format:   format,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start launches the loop. ctx bounds the loop's lifetime; cancelling it
// ends the loop without a shutdown announcement. Use Stop for a clean stop.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateRunning {
		return ErrAlreadyRunning
	}
	// A loop whose Stop gave up waiting may still be finishing its cycle.
	if m.done != nil {
		select {
		case <-m.done:
		default:
			return ErrAlreadyRunning
		}
	}
	m.state = StateRunning
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	m.logger.Info("starting monitor",
		"interval", m.cfg.Interval.String(),
		"error_delay", m.cfg.ErrorDelay.String(),
	)
	go m.run(ctx, m.stop, m.done)
	return nil
}

// Stop signals the loop and waits for it to exit. A cycle already in
// progress completes first. The shutdown announcement is sent afterwards.
// If ctx ends first the loop still exits after its cycle, and Start is
// refused until it has.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateRunning {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.state = StateStopped
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	m.logger.Info("stopping monitor")
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("stop monitor: %w", ctx.Err())
	}

	m.announce(ctx, m.format.Shutdown())
	return nil
}

func (m *Monitor) run(ctx context.Context, stop, done chan struct{}) {
	defer m.exited(done)

	m.announce(ctx, m.format.Startup(m.cfg.Interval))

	for {
		delay := m.cfg.Interval
		if _, err := m.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("check cycle failed", "error", err, "retry_in", m.cfg.ErrorDelay.String())
			delay = m.cfg.ErrorDelay
		}

		select {
		case <-stop:
			return
		case <-ctx.Done():
			m.logger.Info("monitor context done")
			return
		case <-time.After(delay):
		}
	}
}

// exited closes done and marks the monitor stopped when the loop ended on
// its own, which only happens when its context is cancelled.
func (m *Monitor) exited(done chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	close(done)
	if m.done == done && m.state == StateRunning {
		m.state = StateStopped
	}
}

// cycle runs one Poll and converts a panic into ErrCyclePanic.
func (m *Monitor) cycle(ctx context.Context) (res poller.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
		}
	}()
	return m.poller.Poll(ctx)
}

// announce sends a lifecycle message when the notifier is configured.
func (m *Monitor) announce(ctx context.Context, text string) {
	if !m.notifier.Configured() {
		return
	}
	if err := m.notifier.Send(ctx, text); err != nil {
		m.logger.Warn("failed to send lifecycle message", "error", err)
	}
}

// CheckNow runs one cycle immediately, waiting for any cycle already in
// progress.
func (m *Monitor) CheckNow(ctx context.Context) (poller.Result, error) {
	res, err := m.cycle(ctx)
	if err != nil {
		return res, fmt.Errorf("force check: %w", err)
	}
	return res, nil
}

// SendTest sends the test message. It returns ErrNotConfigured when the
// notifier has no credentials.
func (m *Monitor) SendTest(ctx context.Context) error {
	text := m.format.Test()
	if !m.notifier.Configured() {
		m.notifier.Send(ctx, text)
		return ErrNotConfigured
	}
	if err := m.notifier.Send(ctx, text); err != nil {
		return fmt.Errorf("send test message: %w", err)
	}
	return nil
}

// State returns the lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Running reports whether the loop is active.
func (m *Monitor) Running() bool {
	return m.State() == StateRunning
}

// Listings returns up to limit listings from the last successful fetch and
// the total count.
func (m *Monitor) Listings(limit int) ([]model.Listing, int) {
	return m.poller.Current(limit)
}

// JobURL returns the canonical URL for a listing identifier.
func (m *Monitor) JobURL(id string) string {
	return m.format.JobURL(id)
}

// Stats returns a point-in-time snapshot for the dashboard.
func (m *Monitor) Stats() Stats {
	_, current := m.poller.Current(0)
	s := Stats{
		MonitorRunning:     m.Running(),
		Checking:           m.poller.Checking(),
		KnownJobsCount:     m.poller.KnownCount(),
		CheckInterval:      int(m.cfg.Interval.Seconds()),
		LastCheck:          "Never",
		CurrentJobsCount:   current,
		TelegramConfigured: m.notifier.Configured(),
	}
	if t := m.poller.LastCheck(); !t.IsZero() {
		s.LastCheck = t.Format(time.DateTime)
	}
	if t := m.poller.LastUpdated(); !t.IsZero() {
		s.LastUpdate = t.Format(time.DateTime)
	}
	return s
}
