// Package obslog carries the module's ambient logging conventions: a thin
// wrapper around log/slog that adapts it to whatever narrower logging
// surface a component expects.
package obslog

import (
	"context"
	"log/slog"
)

// QueryLogger is the narrow logging surface reuseoracle.Oracle is given:
// enough to report cache activity without depending on log/slog directly
// in that package's public API.
type QueryLogger interface {
	CacheHit(ctx context.Context, queryLen int)
	Reset(ctx context.Context, queryLen int)
	Continue(ctx context.Context, prefixLen, suffixLen int)
	Error(ctx context.Context, stage string, err error)
}

// SlogAdapter adapts a *slog.Logger to QueryLogger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter builds a SlogAdapter around logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) CacheHit(ctx context.Context, queryLen int) {
	a.logger.DebugContext(ctx, "query answered from cache", slog.Int("query_len", queryLen))
}

func (a *SlogAdapter) Reset(ctx context.Context, queryLen int) {
	a.logger.InfoContext(ctx, "query answered via full reset", slog.Int("query_len", queryLen))
}

func (a *SlogAdapter) Continue(ctx context.Context, prefixLen, suffixLen int) {
	a.logger.InfoContext(ctx, "query answered via state reuse",
		slog.Int("prefix_len", prefixLen), slog.Int("suffix_len", suffixLen))
}

func (a *SlogAdapter) Error(ctx context.Context, stage string, err error) {
	a.logger.ErrorContext(ctx, "sul call failed", slog.String("stage", stage), slog.Any("error", err))
}

// Noop is a QueryLogger that discards everything, used where logging is
// configured off.
type Noop struct{}

func (Noop) CacheHit(context.Context, int)        {}
func (Noop) Reset(context.Context, int)           {}
func (Noop) Continue(context.Context, int, int)   {}
func (Noop) Error(context.Context, string, error) {}

var _ QueryLogger = (*SlogAdapter)(nil)
var _ QueryLogger = Noop{}
