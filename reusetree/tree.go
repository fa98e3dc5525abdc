// Package reusetree implements the prefix-sharing cache tree at the heart
// of the reuse cache: a root-anchored tree of Nodes joined by Edges, where
// some nodes additionally carry a reusable system state that lets a caller
// resume SUL execution instead of resetting.
package reusetree

import (
	"fmt"
	"sync"

	"github.com/otterlearn/reusecache/alphabet"
	"github.com/otterlearn/reusecache/word"
)

// Observation is the result of driving a SUL through a word: the output it
// produced and the system state it ended up in. It is the payload Insert
// and InsertSuffix record into the tree.
type Observation[S any, O comparable] struct {
	Output   word.Word[O]
	NewState S
}

// NodeResult is returned by FetchSystemState: the deepest node along the
// query that carries a system state, that state, and the length of the
// prefix leading to it.
type NodeResult[S any, I comparable, O comparable] struct {
	Node         *Node[S, I, O]
	State        S
	PrefixLength int
}

// Tree is the reuse tree. It is safe for concurrent use: every public
// method takes an internal mutex for its own duration and releases it
// before returning, so a caller may fetch a system state, drive the SUL
// without holding any lock, and insert the result afterwards, even if
// other goroutines mutated the tree in between, since InsertSuffix always
// walks forward from the fromNode it was given rather than assuming
// exclusive access.
type Tree[S any, I comparable, O comparable] struct {
	mu sync.Mutex

	alphabet     *alphabet.Alphabet[I]
	alphabetSize int

	invariantInputs map[I]struct{}
	failureOutputs  map[O]struct{}

	invalidate bool
	disposer   func(S)

	root      *Node[S, I, O]
	nodeCount int
}

// Option configures a Tree at construction time.
type Option[S any, I comparable, O comparable] func(*Tree[S, I, O])

// WithInvariantInputs declares inputs whose transitions pump: once observed
// once at a node, any later occurrence of that input at that node is
// answered as a self-loop without SUL interaction.
func WithInvariantInputs[S any, I comparable, O comparable](inputs ...I) Option[S, I, O] {
	return func(t *Tree[S, I, O]) {
		for _, in := range inputs {
			t.invariantInputs[in] = struct{}{}
		}
	}
}

// WithFailureOutputs declares outputs whose transitions pump, symmetric to
// WithInvariantInputs but keyed on the observed output rather than the
// input.
func WithFailureOutputs[S any, I comparable, O comparable](outputs ...O) Option[S, I, O] {
	return func(t *Tree[S, I, O]) {
		for _, out := range outputs {
			t.failureOutputs[out] = struct{}{}
		}
	}
}

// WithoutStateInvalidation disables the default behavior of detaching a
// node's system state when FetchSystemState returns it. Use this only for
// SUL drivers with genuinely non-destructive resumability; that is the
// rare case.
func WithoutStateInvalidation[S any, I comparable, O comparable]() Option[S, I, O] {
	return func(t *Tree[S, I, O]) {
		t.invalidate = false
	}
}

// WithSystemStateDisposer sets the callback DisposeSystemStates invokes for
// every attached state. The default is a no-op.
func WithSystemStateDisposer[S any, I comparable, O comparable](disposer func(S)) Option[S, I, O] {
	return func(t *Tree[S, I, O]) {
		t.disposer = disposer
	}
}

// New builds a Tree over the given alphabet with default
// InvalidateSystemStates = true and empty invariant/failure sets, then
// applies opts in order.
func New[S any, I comparable, O comparable](alpha *alphabet.Alphabet[I], opts ...Option[S, I, O]) *Tree[S, I, O] {
	t := &Tree[S, I, O]{
		alphabet:        alpha,
		alphabetSize:    alpha.Size(),
		invariantInputs: make(map[I]struct{}),
		failureOutputs:  make(map[O]struct{}),
		invalidate:      true,
		nodeCount:       1,
	}
	t.root = newNode[S, I, O](0, t.alphabetSize)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the tree's current root node.
func (t *Tree[S, I, O]) Root() *Node[S, I, O] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// NodeCount returns the number of nodes allocated in the current tree
// generation, including the root.
func (t *Tree[S, I, O]) NodeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodeCount
}

// AddInvariantInput declares in as invariant after construction. Per the
// safer contract recorded in DESIGN.md, this only affects edges created by
// future Insert calls; edges already created for in keep whatever shape
// they had when they were inserted.
func (t *Tree[S, I, O]) AddInvariantInput(in I) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invariantInputs[in] = struct{}{}
}

// AddFailureOutput declares out as a failure output after construction,
// with the same forward-only contract as AddInvariantInput.
func (t *Tree[S, I, O]) AddFailureOutput(out O) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failureOutputs[out] = struct{}{}
}

// GetOutput walks from the root along query and returns the concatenated
// output of the traversed edges, or (nil, false) if query leaves the known
// tree at any position. It never mutates the tree.
func (t *Tree[S, I, O]) GetOutput(query word.Word[I]) (word.Word[O], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	out := make(word.Word[O], 0, query.Len())
	for i := 0; i < query.Len(); i++ {
		idx, ok := t.alphabet.IndexOf(query.At(i))
		if !ok {
			return nil, false
		}
		edge := node.Edge(idx)
		if edge == nil {
			return nil, false
		}
		out = append(out, edge.Output())
		node = edge.Target()
	}
	return out, true
}

// FetchSystemState walks from the root along query as long as edges exist,
// tracking the deepest visited node carrying a system state. If one is
// found, and the tree was configured with InvalidateSystemStates (the
// default), the state is detached from its node before being returned:
// ownership transfers to the caller atomically with the fetch.
func (t *Tree[S, I, O]) FetchSystemState(query word.Word[I]) (NodeResult[S, I, O], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	var deepest *Node[S, I, O]
	length := 0
	if node.HasState() {
		deepest = node
	}

	for i := 0; i < query.Len(); i++ {
		idx, ok := t.alphabet.IndexOf(query.At(i))
		if !ok {
			break
		}
		edge := node.Edge(idx)
		if edge == nil {
			break
		}
		node = edge.Target()
		if node.HasState() {
			deepest = node
			length = i + 1
		}
	}

	if deepest == nil {
		return NodeResult[S, I, O]{}, false
	}

	state, _ := deepest.State()
	if t.invalidate {
		deepest.clearState()
	}

	return NodeResult[S, I, O]{Node: deepest, State: state, PrefixLength: length}, true
}

// Insert inserts query/obs starting at the root.
func (t *Tree[S, I, O]) Insert(query word.Word[I], obs Observation[S, O]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertFrom(t.root, query, obs)
}

// InsertSuffix inserts suffix/obs starting at fromNode, a node previously
// returned by FetchSystemState. It is safe to call even if the tree was
// mutated by other goroutines since the fetch:
// the walk proceeds from fromNode itself, matching existing edges or
// extending them, and fails deterministically on a genuine conflict.
func (t *Tree[S, I, O]) InsertSuffix(suffix word.Word[I], fromNode *Node[S, I, O], obs Observation[S, O]) error {
	if fromNode == nil {
		return ErrNilNode
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertFrom(fromNode, suffix, obs)
}

func (t *Tree[S, I, O]) insertFrom(from *Node[S, I, O], query word.Word[I], obs Observation[S, O]) error {
	if query.Len() != obs.Output.Len() {
		return ErrLengthMismatch
	}

	node := from
	for i := 0; i < query.Len(); i++ {
		in := query.At(i)
		out := obs.Output.At(i)

		idx, ok := t.alphabet.IndexOf(in)
		if !ok {
			return fmt.Errorf("reusetree: input %v is not a member of the alphabet", in)
		}

		if edge := node.Edge(idx); edge != nil {
			if edge.Output() == out {
				node = edge.Target()
				continue
			}
			return &NonDeterministicBehaviorError[I, O]{
				Position:       i,
				Input:          in,
				CachedOutput:   edge.Output(),
				ObservedOutput: out,
			}
		}

		var target *Node[S, I, O]
		switch {
		case t.isFailureOutput(out):
			target = node
		case t.isInvariantInput(in):
			target = node
		default:
			target = newNode[S, I, O](t.nodeCount, t.alphabetSize)
			t.nodeCount++
		}

		node.edges[idx] = &Edge[S, I, O]{source: node, target: target, input: in, output: out}
		node = target
	}

	node.setState(obs.NewState)
	return nil
}

func (t *Tree[S, I, O]) isInvariantInput(in I) bool {
	_, ok := t.invariantInputs[in]
	return ok
}

func (t *Tree[S, I, O]) isFailureOutput(out O) bool {
	_, ok := t.failureOutputs[out]
	return ok
}

// DisposeSystemStates depth-first traverses the tree from the root and, for
// every node carrying a system state, invokes the configured disposer and
// clears the state. Reflexive edges are never followed, so pump points are
// visited exactly once. The disposer runs under the tree's lock and must
// not re-enter the tree.
func (t *Tree[S, I, O]) DisposeSystemStates() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposeFrom(t.root)
}

func (t *Tree[S, I, O]) disposeFrom(n *Node[S, I, O]) {
	if n.HasState() {
		state := n.takeState()
		if t.disposer != nil {
			t.disposer(state)
		}
	}
	for _, e := range n.edges {
		if e == nil || e.Reflexive() {
			continue
		}
		t.disposeFrom(e.target)
	}
}

// ClearTree replaces the root with a fresh empty node, resets the node
// counter, and empties the invariant-input and failure-output sets. The
// disposer is deliberately NOT invoked: this is a structural reset, and any
// attached system states are the caller's responsibility to release.
func (t *Tree[S, I, O]) ClearTree() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodeCount = 1
	t.root = newNode[S, I, O](0, t.alphabetSize)
	t.invariantInputs = make(map[I]struct{})
	t.failureOutputs = make(map[O]struct{})
}

// Walk depth-first visits every node reachable from the root without
// following reflexive edges, calling visit once per node. It is intended
// for read-only inspection (e.g. the snapshot package) and holds the tree
// lock for its entire duration, so visit must not call back into the tree.
func (t *Tree[S, I, O]) Walk(visit func(*Node[S, I, O])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.walk(t.root, visit)
}

func (t *Tree[S, I, O]) walk(n *Node[S, I, O], visit func(*Node[S, I, O])) {
	visit(n)
	for _, e := range n.edges {
		if e == nil || e.Reflexive() {
			continue
		}
		t.walk(e.target, visit)
	}
}

// AlphabetSize returns the size of the tree's alphabet.
func (t *Tree[S, I, O]) AlphabetSize() int {
	return t.alphabetSize
}

// ReinstateState re-attaches state to node, undoing the detachment
// FetchSystemState performed when invalidation is enabled. It exists for
// the case where a ReuseCapableOracle reports it never consumed a resumed
// state: the caller must put the state back before inserting the suffix
// observation, or the state is lost. node must be a node previously
// returned by FetchSystemState on this tree.
func (t *Tree[S, I, O]) ReinstateState(node *Node[S, I, O], state S) {
	t.mu.Lock()
	defer t.mu.Unlock()
	node.setState(state)
}
