// Package querylog defines the audit-trail contract for membership
// queries answered by a reuseoracle.Oracle: what was asked, how it was
// answered, and when, so every query an Oracle dispatches to the SUL can be
// recorded for later inspection. Cache hits are not recorded.
package querylog

import (
	"context"
	"time"
)

// Entry is a single recorded query answer.
type Entry struct {
	Sequence int64
	Query    []string
	Output   []string
	Outcome  string
	Duration time.Duration
	At       time.Time
}

// Store defines the interface for persisting query-log entries.
// Implementations may be in-memory (for tests and short-lived
// experiments) or backed by a relational database (querylog/sqlite) for
// experiments that must survive a process restart.
type Store interface {
	// Append records entry, assigning it the next sequence number.
	Append(ctx context.Context, entry Entry) error

	// Recent returns the last n entries, most recent first.
	Recent(ctx context.Context, n int) ([]Entry, error)

	// Count returns the total number of entries ever appended.
	Count(ctx context.Context) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
