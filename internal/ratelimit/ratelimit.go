// Package ratelimit spaces out outbound notifications so a burst of new
// listings stays under the messaging API's per-chat rate limit.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/listingwatch/internal/model"
)

// Pacer enforces a minimum delay between consecutive calls to Wait.
type Pacer struct {
	mu       sync.Mutex
	last     time.Time // zero until the first Wait
	minDelay time.Duration
}

// NewPacer creates a pacer that keeps minDelay between calls. A zero
// minDelay never blocks.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{minDelay: minDelay}
}

// Wait blocks until minDelay has passed since the previous call returned.
// Returns an error if the context is cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()

	if p.last.IsZero() || now.Sub(p.last) >= p.minDelay {
		p.last = now
		p.mu.Unlock()
		return nil
	}

	remaining := p.minDelay - now.Sub(p.last)
	// Reserve the slot so concurrent callers queue behind this one.
	p.last = now.Add(remaining)
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer wait: %w", ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// PacedNotifier is a decorator that waits on a Pacer before delegating to
// the wrapped Notifier. Unconfigured notifiers are not paced since they
// never reach the network.
type PacedNotifier struct {
	inner model.Notifier
	pacer *Pacer
}

// NewPacedNotifier wraps inner with pacing.
func NewPacedNotifier(inner model.Notifier, pacer *Pacer) *PacedNotifier {
	return &PacedNotifier{inner: inner, pacer: pacer}
}

// Configured reports whether the wrapped notifier is configured.
func (n *PacedNotifier) Configured() bool { return n.inner.Configured() }

// Send waits for the pacer, then sends.
func (n *PacedNotifier) Send(ctx context.Context, text string) error {
	if n.inner.Configured() {
		if err := n.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return n.inner.Send(ctx, text)
}
