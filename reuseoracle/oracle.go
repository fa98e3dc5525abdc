// Package reuseoracle implements the membership-query front end that sits
// on top of a reusetree.Tree: on every query it either answers from cache,
// dispatches a full reset-and-drive of the SUL, or resumes a previously
// fetched system state and drives it through the remaining suffix.
package reuseoracle

import (
	"context"
	"fmt"
	"time"

	"github.com/otterlearn/reusecache/alphabet"
	"github.com/otterlearn/reusecache/obslog"
	"github.com/otterlearn/reusecache/querylog"
	"github.com/otterlearn/reusecache/reusetree"
	"github.com/otterlearn/reusecache/telemetry"
	"github.com/otterlearn/reusecache/word"
)

// ProcessResult is returned by ReuseCapableOracle.ProcessQuery: the output
// observed while driving the SUL from a fresh reset through the whole
// query, and the state the SUL ended up in.
type ProcessResult[S any, O comparable] struct {
	Output   word.Word[O]
	NewState S
}

// ContinueResult is returned by ReuseCapableOracle.ContinueQuery: the
// output observed while resuming from a previously fetched state and
// driving the SUL through the suffix, the state it ended up in, and
// OldInvalidated reporting whether the driver consumed the resumed state.
//
// OldInvalidated should normally be true: the resumed state was used up by
// the call and cannot be resumed again. A driver that reports false is
// telling the Oracle it did NOT consume the passed-in state; AnswerQuery
// reinstates the state on the tree in that case before recording the
// suffix observation.
type ContinueResult[S any, O comparable] struct {
	Output         word.Word[O]
	NewState       S
	OldInvalidated bool
}

// ReuseCapableOracle is the SUL-facing contract a ReuseOracle drives. It is
// invoked with the tree's lock released, so implementations are free to
// block on real I/O and may be called concurrently from independent
// ReuseOracle goroutines sharing the same underlying SUL pool.
type ReuseCapableOracle[S any, I comparable, O comparable] interface {
	// ProcessQuery resets the SUL and drives it through query, returning
	// output of the same length as query.
	ProcessQuery(ctx context.Context, query word.Word[I]) (ProcessResult[S, O], error)

	// ContinueQuery resumes the SUL from state and drives it through
	// suffix. Calling ContinueQuery twice with the same state is
	// undefined: the state is consumed by the first call.
	ContinueQuery(ctx context.Context, suffix word.Word[I], state S) (ContinueResult[S, O], error)
}

// Oracle answers membership queries by consulting a reusetree.Tree before
// falling back to a ReuseCapableOracle, and feeding every SUL observation
// back into the tree. It implements the same single-mutual-exclusion
// discipline as the tree itself: AnswerQuery never holds any lock while
// the ReuseCapableOracle is running.
type Oracle[S any, I comparable, O comparable] struct {
	tree   *reusetree.Tree[S, I, O]
	sul    ReuseCapableOracle[S, I, O]
	alpha  *alphabet.Alphabet[I]
	logger obslog.QueryLogger
	window *telemetry.Window
	log    querylog.Store
}

// Option configures an Oracle at construction time.
type Option[S any, I comparable, O comparable] func(*Oracle[S, I, O])

// WithLogger attaches a QueryLogger the Oracle reports every answered
// query and SUL error to. The default is obslog.Noop.
func WithLogger[S any, I comparable, O comparable](logger obslog.QueryLogger) Option[S, I, O] {
	return func(o *Oracle[S, I, O]) {
		o.logger = logger
	}
}

// WithTelemetry attaches a telemetry.Window the Oracle tallies every
// answered query's outcome into. The default is no tallying.
func WithTelemetry[S any, I comparable, O comparable](window *telemetry.Window) Option[S, I, O] {
	return func(o *Oracle[S, I, O]) {
		o.window = window
	}
}

// WithQueryLog attaches a querylog.Store the Oracle appends one Entry to
// for every dispatched query — a full reset or a state-resumed
// continuation. Cache hits are not novel observations and are never
// logged, matching ExperimentalDataFilter's audit-trail intent.
func WithQueryLog[S any, I comparable, O comparable](store querylog.Store) Option[S, I, O] {
	return func(o *Oracle[S, I, O]) {
		o.log = store
	}
}

// New builds an Oracle over alpha, backed by tree and driving sul for
// cache misses. tree is typically constructed by the caller with
// reusetree.New so its invariant-input and failure-output configuration is
// visible before the first query.
func New[S any, I comparable, O comparable](alpha *alphabet.Alphabet[I], tree *reusetree.Tree[S, I, O], sul ReuseCapableOracle[S, I, O], opts ...Option[S, I, O]) *Oracle[S, I, O] {
	o := &Oracle[S, I, O]{tree: tree, sul: sul, alpha: alpha, logger: obslog.Noop{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Tree returns the underlying reuse tree, e.g. for snapshotting or
// telemetry inspection.
func (o *Oracle[S, I, O]) Tree() *reusetree.Tree[S, I, O] {
	return o.tree
}

// Outcome classifies how a query answer was produced, for telemetry.
type Outcome int

const (
	// OutcomeCacheHit means the full query was already known to the tree.
	OutcomeCacheHit Outcome = iota
	// OutcomeReset means a full ProcessQuery ran (no reusable prefix).
	OutcomeReset
	// OutcomeContinue means a ContinueQuery resumed from a fetched state.
	OutcomeContinue
)

// AnswerQuery answers query, returning its full output (length |query|)
// along with how the answer was produced. Batching queries or trimming a
// shared-prefix answer down to just its suffix is a caller concern:
// AnswerQuery always returns the complete output for the query it was
// given.
func (o *Oracle[S, I, O]) AnswerQuery(ctx context.Context, query word.Word[I]) (word.Word[O], Outcome, error) {
	for i := 0; i < query.Len(); i++ {
		if _, ok := o.alpha.IndexOf(query.At(i)); !ok {
			err := fmt.Errorf("reuseoracle: input %v at position %d is not a member of the alphabet", query.At(i), i)
			o.logger.Error(ctx, "validate_query", err)
			return nil, OutcomeReset, err
		}
	}

	if out, ok := o.tree.GetOutput(query); ok {
		o.logger.CacheHit(ctx, query.Len())
		if o.window != nil {
			o.window.RecordCacheHit()
		}
		return out, OutcomeCacheHit, nil
	}

	start := time.Now()

	fetched, ok := o.tree.FetchSystemState(query)
	if !ok {
		res, err := o.sul.ProcessQuery(ctx, query)
		if err != nil {
			o.logger.Error(ctx, "process_query", err)
			return nil, OutcomeReset, err
		}
		obs := reusetree.Observation[S, O]{Output: res.Output, NewState: res.NewState}
		if err := o.tree.Insert(query, obs); err != nil {
			return nil, OutcomeReset, err
		}
		o.logger.Reset(ctx, query.Len())
		if o.window != nil {
			o.window.RecordReset()
		}
		o.appendLog(ctx, query, res.Output, "reset", time.Since(start))
		return res.Output, OutcomeReset, nil
	}

	prefix := query.Slice()[:fetched.PrefixLength]
	suffix := query.Suffix(fetched.PrefixLength)
	res, err := o.sul.ContinueQuery(ctx, suffix, fetched.State)
	if err != nil {
		o.logger.Error(ctx, "continue_query", err)
		return nil, OutcomeContinue, err
	}

	// FetchSystemState already detached the state from fetched.Node when
	// invalidation is enabled. If the driver reports it never consumed
	// that state, put it back before inserting the suffix observation, or
	// it is lost for good. InsertSuffix below
	// may still finish back on fetched.Node itself, e.g. when suffix is
	// made entirely of invariant-input/failure-output symbols that pump
	// via reflexive edges; in that case the state written by InsertSuffix
	// simply supersedes the one just reinstated here.
	if !res.OldInvalidated {
		o.tree.ReinstateState(fetched.Node, fetched.State)
	}

	obs := reusetree.Observation[S, O]{Output: res.Output, NewState: res.NewState}
	if err := o.tree.InsertSuffix(suffix, fetched.Node, obs); err != nil {
		return nil, OutcomeContinue, err
	}

	prefixOut, _ := o.tree.GetOutput(word.New(prefix...))
	full := make(word.Word[O], 0, query.Len())
	full = append(full, prefixOut...)
	full = append(full, res.Output...)

	o.logger.Continue(ctx, fetched.PrefixLength, suffix.Len())
	if o.window != nil {
		o.window.RecordContinue()
	}
	o.appendLog(ctx, query, full, "continue", time.Since(start))
	return full, OutcomeContinue, nil
}

// appendLog records one querylog.Entry for a dispatched query. It is never
// called for cache hits: those are not novel observations of the SUL.
func (o *Oracle[S, I, O]) appendLog(ctx context.Context, query word.Word[I], output word.Word[O], outcome string, elapsed time.Duration) {
	if o.log == nil {
		return
	}
	querySyms := query.Slice()
	inputs := make([]string, len(querySyms))
	for i, sym := range querySyms {
		inputs[i] = fmt.Sprint(sym)
	}
	outputSyms := output.Slice()
	outputs := make([]string, len(outputSyms))
	for i, sym := range outputSyms {
		outputs[i] = fmt.Sprint(sym)
	}
	_ = o.log.Append(ctx, querylog.Entry{
		Query:    inputs,
		Output:   outputs,
		Outcome:  outcome,
		Duration: elapsed,
		At:       time.Now(),
	})
}
