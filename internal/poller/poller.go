package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amishk599/listingwatch/internal/dedup"
	"github.com/amishk599/listingwatch/internal/metrics"
	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/notifier"
)

// Result describes one check cycle.
type Result struct {
	FetchedAt time.Time
	Fetched   int
	NewIDs    []string // in source order
	Skipped   bool     // fetch failed or returned nothing
	Sent      int
	Failed    int
}

// ListingPoller owns the detection pipeline for one listing source:
// fetch → diff → notify → merge → persist. It is the only writer of the
// known set. Cycles are serialized: a Poll that starts while another is
// running waits for it to finish.
type ListingPoller struct {
	fetcher  model.ListingFetcher
	store    *dedup.Store
	notifier model.Notifier
	format   *notifier.Formatter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time

	cycleMu  sync.Mutex
	checking atomic.Bool

	mu        sync.RWMutex
	known     dedup.Set
	current   []model.Listing
	lastCheck time.Time
}

// NewListingPoller creates a poller wired with all its dependencies and
// loads the known set from store. m may be nil.
func NewListingPoller(
	fetcher model.ListingFetcher,
	store *dedup.Store,
	n model.Notifier,
	format *notifier.Formatter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ListingPoller {
	p := &ListingPoller{
		fetcher:  fetcher,
		store:    store,
		notifier: n,
		format:   format,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		known:    store.Load(),
	}
	p.metrics.Known(p.known.Len())
	return p
}

// Poll runs one check cycle. Fetch and send failures are logged and do not
// produce an error; the only errors returned are context cancellation. A
// cycle cancelled mid-batch records only the listings already sent.
func (p *ListingPoller) Poll(ctx context.Context) (Result, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()
	p.checking.Store(true)
	defer p.checking.Store(false)

	p.logger.Info("checking for new listings")

	listings, ok := p.fetch(ctx)
	if err := ctx.Err(); err != nil {
		p.metrics.Cycle(metrics.CycleError)
		return Result{Skipped: true}, fmt.Errorf("poll: %w", err)
	}
	if !ok {
		p.metrics.Cycle(metrics.CycleSkipped)
		return Result{Skipped: true}, nil
	}

	fetchedAt := p.now()
	p.mu.Lock()
	p.current = listings
	p.lastCheck = fetchedAt
	known := p.known
	p.mu.Unlock()
	p.metrics.LastCheck(fetchedAt)

	res := Result{FetchedAt: fetchedAt, Fetched: len(listings)}

	newIDs := dedup.Diff(dedup.IDs(listings), known)
	if newIDs.Len() == 0 {
		p.logger.Info("no new listings", "fetched", len(listings), "known", known.Len())
		p.metrics.Cycle(metrics.CycleUnchanged)
		return res, nil
	}

	p.logger.Info("found new listings", "count", newIDs.Len())

	// Only listings whose send was not cut short by cancellation become
	// known; the rest stay new for the next cycle.
	notified := make(dedup.Set, newIDs.Len())
	for _, l := range listings {
		if !newIDs.Has(l.ID) || notified.Has(l.ID) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if err := p.send(ctx, p.format.Listing(l), &res, "listing_id", l.ID); err != nil && ctx.Err() != nil {
			break
		}
		notified[l.ID] = struct{}{}
		res.NewIDs = append(res.NewIDs, l.ID)
	}

	if notified.Len() > 0 {
		merged := dedup.Merge(known, notified)
		p.mu.Lock()
		p.known = merged
		p.mu.Unlock()
		p.store.Save(merged)
		p.metrics.Known(merged.Len())
		p.metrics.NewListings(notified.Len())
	}

	if err := ctx.Err(); err != nil {
		p.metrics.Cycle(metrics.CycleError)
		p.logger.Warn("check interrupted",
			"new", newIDs.Len(),
			"notified", notified.Len(),
			"error", err,
		)
		return res, fmt.Errorf("poll: %w", err)
	}

	if notified.Len() > 1 {
		p.send(ctx, p.format.Summary(notified.Len()), &res, "kind", "summary")
	}

	p.metrics.Cycle(metrics.CycleNew)
	p.logger.Info("check complete",
		"fetched", res.Fetched,
		"new", len(res.NewIDs),
		"sent", res.Sent,
		"failed", res.Failed,
	)
	return res, nil
}

// fetch returns the current listings, or ok=false when the cycle should be
// skipped. An empty result is treated like an unreachable source so that a
// source outage never looks like "nothing new".
func (p *ListingPoller) fetch(ctx context.Context) ([]model.Listing, bool) {
	listings, err := p.fetcher.FetchListings(ctx)
	if err != nil {
		p.logger.Error("failed to fetch listings", "kind", errorKind(err), "error", err)
		return nil, false
	}
	if len(listings) == 0 {
		p.logger.Warn("no listings fetched, source might be down")
		return nil, false
	}
	return listings, true
}

// send delivers one message. Failures are logged and counted; the error is
// returned only so the caller can tell a cancelled send from a failed one.
func (p *ListingPoller) send(ctx context.Context, text string, res *Result, attrs ...any) error {
	if !p.notifier.Configured() {
		p.metrics.Notification(metrics.NotifySkipped)
		p.notifier.Send(ctx, text)
		return nil
	}
	if err := p.notifier.Send(ctx, text); err != nil {
		res.Failed++
		p.metrics.Notification(metrics.NotifyFailed)
		p.logger.Error("failed to send notification",
			append(attrs, "kind", errorKind(err), "error", err)...)
		return err
	}
	res.Sent++
	p.metrics.Notification(metrics.NotifySent)
	return nil
}

// Checking reports whether a cycle is in progress.
func (p *ListingPoller) Checking() bool {
	return p.checking.Load()
}

// KnownCount returns the size of the known set.
func (p *ListingPoller) KnownCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.known.Len()
}

// Current returns a copy of up to limit listings from the last successful
// fetch, and the total count. limit <= 0 returns all of them.
func (p *ListingPoller) Current(limit int) ([]model.Listing, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := len(p.current)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.Listing, limit)
	copy(out, p.current[:limit])
	return out, n
}

// LastCheck returns the time of the last successful fetch (zero if none).
func (p *ListingPoller) LastCheck() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastCheck
}

// LastUpdated returns when the known set was last persisted or loaded.
func (p *ListingPoller) LastUpdated() time.Time {
	return p.store.LastUpdated()
}

// errorKind names the failure class for log attributes.
func errorKind(err error) string {
	var httpErr *model.HTTPError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &httpErr):
		return "http_status"
	case errors.Is(err, model.ErrDecode):
		return "decode"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	default:
		return "transport"
	}
}
