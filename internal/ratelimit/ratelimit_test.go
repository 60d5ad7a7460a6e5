package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWait_EnforcesMinDelay(t *testing.T) {
	pacer := NewPacer(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 80ms for timer jitter.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	pacer := NewPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected near-instant waits, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	pacer := NewPacer(5 * time.Second)
	ctx := context.Background()

	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := pacer.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v, want prompt return", elapsed)
	}
}

func TestWait_ConcurrentCallersAreSpaced(t *testing.T) {
	pacer := NewPacer(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pacer.Wait(ctx)
		}()
	}
	wg.Wait()

	// Three calls: immediate, +50ms, +100ms.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("elapsed %v: expected >= 90ms for three paced calls", elapsed)
	}
}

type countingNotifier struct {
	configured bool
	mu         sync.Mutex
	sent       []time.Time
}

func (n *countingNotifier) Configured() bool { return n.configured }

func (n *countingNotifier) Send(_ context.Context, _ string) error {
	n.mu.Lock()
	n.sent = append(n.sent, time.Now())
	n.mu.Unlock()
	return nil
}

func TestPacedNotifier_SpacesConfiguredSends(t *testing.T) {
	inner := &countingNotifier{configured: true}
	n := NewPacedNotifier(inner, NewPacer(60*time.Millisecond))

	for i := 0; i < 2; i++ {
		if err := n.Send(context.Background(), "msg"); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	if len(inner.sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(inner.sent))
	}
	if gap := inner.sent[1].Sub(inner.sent[0]); gap < 50*time.Millisecond {
		t.Errorf("gap between sends = %v, want >= 50ms", gap)
	}
}

func TestPacedNotifier_UnconfiguredIsNotPaced(t *testing.T) {
	inner := &countingNotifier{configured: false}
	n := NewPacedNotifier(inner, NewPacer(time.Second))

	start := time.Now()
	for i := 0; i < 3; i++ {
		n.Send(context.Background(), "msg")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unconfigured sends took %v, want no pacing", elapsed)
	}
	if n.Configured() {
		t.Error("Configured() should delegate to inner")
	}
}
