// Package telemetry records reset/continue/cache-hit counts for a
// reuseoracle.Oracle: a passive tally the Oracle records into, which does
// not change the Oracle's behavior.
package telemetry

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Event records a single classified query outcome for the recent-activity
// window.
type Event struct {
	Seq     uint64
	Outcome string
}

// Snapshot is a point-in-time read of a Window's counters and recent
// activity.
type Snapshot struct {
	CacheHits int64
	Resets    int64
	Continues int64
	Recent    []Event
}

// Window tallies query outcomes and retains a bounded window of the most
// recent raw events, evicting the oldest once full. The bound keeps
// memory flat for long-running learning experiments: a fixed-size
// auxiliary structure sitting next to the counters that never itself
// becomes the source of truth.
type Window struct {
	mu     sync.Mutex
	recent *lru.Cache[uint64, string]
	seq    uint64

	cacheHits int64
	resets    int64
	continues int64
}

// NewWindow builds a Window retaining at most size recent events.
func NewWindow(size int) (*Window, error) {
	c, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, err
	}
	return &Window{recent: c}, nil
}

// RecordCacheHit tallies a query that was answered entirely from the
// reuse tree without touching the SUL.
func (w *Window) RecordCacheHit() {
	atomic.AddInt64(&w.cacheHits, 1)
	w.record("cache-hit")
}

// RecordReset tallies a query answered via a full SUL reset.
func (w *Window) RecordReset() {
	atomic.AddInt64(&w.resets, 1)
	w.record("reset")
}

// RecordContinue tallies a query answered by resuming a reused system
// state.
func (w *Window) RecordContinue() {
	atomic.AddInt64(&w.continues, 1)
	w.record("continue")
}

func (w *Window) record(outcome string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.recent.Add(w.seq, outcome)
}

// Snapshot returns the current counters and the retained recent events,
// oldest first.
func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	keys := w.recent.Keys()
	events := make([]Event, 0, len(keys))
	for _, k := range keys {
		if outcome, ok := w.recent.Peek(k); ok {
			events = append(events, Event{Seq: k, Outcome: outcome})
		}
	}
	w.mu.Unlock()

	return Snapshot{
		CacheHits: atomic.LoadInt64(&w.cacheHits),
		Resets:    atomic.LoadInt64(&w.resets),
		Continues: atomic.LoadInt64(&w.continues),
		Recent:    events,
	}
}

// ResetCounters zeroes the tallies without discarding the recent-activity
// window.
func (w *Window) ResetCounters() {
	atomic.StoreInt64(&w.cacheHits, 0)
	atomic.StoreInt64(&w.resets, 0)
	atomic.StoreInt64(&w.continues, 0)
}
