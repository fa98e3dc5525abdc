package reusetree

import (
	"errors"
	"fmt"
)

// Sentinel invalid-argument errors. Go's slice-based Word has no distinct
// "absent" state (an empty query is a legitimate zero-length operation,
// not a missing one), so the only invalid-argument conditions with a
// sentinel error are a length mismatch between a query and its claimed
// output, and a nil fromNode passed to InsertSuffix. An input outside the
// alphabet is reported by Insert/InsertSuffix with a plain error.
var (
	// ErrLengthMismatch is returned by Insert/InsertSuffix when the query
	// and the observation's output word have different lengths.
	ErrLengthMismatch = errors.New("reusetree: query and output word must have equal length")

	// ErrNilNode is returned by InsertSuffix when fromNode is nil.
	ErrNilNode = errors.New("reusetree: fromNode must not be nil")
)

// NonDeterministicBehaviorError reports that Insert observed an output that
// contradicts a previously cached observation for the same input at the
// same node. The tree is left as it was at detection and nothing is rolled
// back: positions before Position that matched cached edges were only
// walked, but a reflexive edge created for an invariant input or failure
// output at an earlier position of the same call stays in the tree.
type NonDeterministicBehaviorError[I comparable, O comparable] struct {
	// Position is the zero-based index into the query where the conflict
	// was detected.
	Position int
	// Input is the conflicting input symbol.
	Input I
	// CachedOutput is the output already recorded for Input at this node.
	CachedOutput O
	// ObservedOutput is the output reported by the new observation.
	ObservedOutput O
}

func (e *NonDeterministicBehaviorError[I, O]) Error() string {
	return fmt.Sprintf(
		"reusetree: non-deterministic behavior at position %d: input %v cached output %v, observed %v",
		e.Position, e.Input, e.CachedOutput, e.ObservedOutput,
	)
}
