// Package symbolcache implements an incremental, symbol-at-a-time cache
// for streaming membership-query oracles. Unlike reusetree/reuseoracle, it
// does not reuse system states: it only avoids re-querying a delegate
// oracle for input sequences it has already observed, by growing a Mealy
// automaton one transition at a time.
package symbolcache

import "context"

// SymbolQueryOracle is the delegate contract a Cache drives on a cache
// miss: Reset returns the SUL to its initial configuration, and Query
// steps it by one symbol, returning the resulting output.
type SymbolQueryOracle[I comparable, O comparable] interface {
	Reset(ctx context.Context) error
	Query(ctx context.Context, i I) (O, error)
}

type transition[O comparable] struct {
	target int
	output O
}

// Cache wraps a SymbolQueryOracle with an incrementally growing Mealy
// automaton cache. It is not safe for concurrent use: Query and Reset
// mutate currentState/currentTrace without synchronization, matching the
// single-threaded, single-conversation nature of a streaming oracle (a
// caller wanting concurrency should use one Cache per goroutine, each with
// its own delegate).
type Cache[I comparable, O comparable] struct {
	delegate SymbolQueryOracle[I, O]

	states []map[I]transition[O]

	currentState      int
	currentTrace      []I
	currentTraceValid bool
}

// New builds a Cache over delegate, starting with a single initial cache
// state and an invalid trace: the first call must be Reset before Query,
// matching the delegate contract's own reset-before-query requirement.
func New[I comparable, O comparable](delegate SymbolQueryOracle[I, O]) *Cache[I, O] {
	c := &Cache[I, O]{
		delegate: delegate,
		states:   []map[I]transition[O]{{}},
	}
	return c
}

// Reset returns the cache's read head to the initial state and marks the
// current trace valid: subsequent Query calls will be answered from cache
// whenever possible, without touching the delegate. The delegate itself is
// not reset here: Query resets it and replays the trace on the first cache
// miss.
func (c *Cache[I, O]) Reset(ctx context.Context) error {
	c.currentState = 0
	c.currentTrace = c.currentTrace[:0]
	c.currentTraceValid = true
	return nil
}

// Query answers input symbol i: if the current trace is valid and the
// cache already has a transition for i from the current state, the cached
// output is returned and the delegate is never touched. Otherwise the
// cache falls back to the delegate, first replaying the trace so far if
// the cache diverged mid-trace, then querying i directly, and records the
// new transition.
func (c *Cache[I, O]) Query(ctx context.Context, i I) (O, error) {
	var zero O

	if c.currentTraceValid {
		if tr, ok := c.states[c.currentState][i]; ok {
			c.currentTrace = append(c.currentTrace, i)
			c.currentState = tr.target
			return tr.output, nil
		}

		c.currentTraceValid = false
		if err := c.delegate.Reset(ctx); err != nil {
			return zero, err
		}
		for _, sym := range c.currentTrace {
			if _, err := c.delegate.Query(ctx, sym); err != nil {
				return zero, err
			}
		}
	}

	output, err := c.delegate.Query(ctx, i)
	if err != nil {
		return zero, err
	}

	if tr, ok := c.states[c.currentState][i]; ok {
		c.currentState = tr.target
		return output, nil
	}

	newState := len(c.states)
	c.states = append(c.states, map[I]transition[O]{})
	c.states[c.currentState][i] = transition[O]{target: newState, output: output}
	c.currentState = newState

	return output, nil
}

// StateCount returns the number of automaton states currently cached,
// including the initial state.
func (c *Cache[I, O]) StateCount() int {
	return len(c.states)
}
