package crawler

import (
	"context"
	"sync"
	"time"
)

// Frontier is an unbounded, internally-synchronized queue of pending crawl
// targets. Producers and consumers may call it concurrently without external
// locking. There is no central completion signal: each consumer gives up
// independently once Dequeue stays empty for the full idle window, which is
// how the crawl terminates.
type Frontier struct {
	mu    sync.Mutex
	items []CrawlTarget
	wake  chan struct{}
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends t and never blocks.
func (f *Frontier) Enqueue(t CrawlTarget) {
	f.mu.Lock()
	f.items = append(f.items, t)
	f.mu.Unlock()
	f.signal()
}

// Len reports the number of queued targets.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Dequeue pops the oldest target. When the frontier is empty it waits up to
// idle for new work, then returns ErrFrontierIdle. Context cancellation wins
// over both.
func (f *Frontier) Dequeue(ctx context.Context, idle time.Duration) (CrawlTarget, error) {
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		if target, ok := f.pop(); ok {
			return target, nil
		}
		select {
		case <-ctx.Done():
			return CrawlTarget{}, ctx.Err()
		case <-timer.C:
			return CrawlTarget{}, ErrFrontierIdle
		case <-f.wake:
		}
	}
}

func (f *Frontier) pop() (CrawlTarget, bool) {
	f.mu.Lock()
	if len(f.items) == 0 {
		f.mu.Unlock()
		return CrawlTarget{}, false
	}
	head := f.items[0]
	f.items = f.items[1:]
	remaining := len(f.items)
	f.mu.Unlock()
	// The wake channel carries a single token, so re-signal when items
	// remain in case several consumers are parked.
	if remaining > 0 {
		f.signal()
	}
	return head, true
}

func (f *Frontier) signal() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}
