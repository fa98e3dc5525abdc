package snapshot

import (
	"fmt"

	"github.com/otterlearn/reusecache/reusetree"
)

// treeLike is the subset of reusetree.Tree that Export needs, expressed as
// an interface.
type treeLike[S any, I comparable, O comparable] interface {
	AlphabetSize() int
	Walk(visit func(*reusetree.Node[S, I, O]))
}

// Export walks tree and returns one NodeRecord per node, in the order
// reusetree.Tree.Walk visits them (root first, depth-first, reflexive
// edges not followed). System states are never included: NodeRecord only
// ever reports HasState, never State.
func Export[S any, I comparable, O comparable](tree treeLike[S, I, O]) []NodeRecord {
	alphabetSize := tree.AlphabetSize()
	var records []NodeRecord

	tree.Walk(func(n *reusetree.Node[S, I, O]) {
		rec := NodeRecord{ID: n.ID(), HasState: n.HasState()}
		for idx := 0; idx < alphabetSize; idx++ {
			edge := n.Edge(idx)
			if edge == nil {
				continue
			}
			rec.Edges = append(rec.Edges, EdgeRecord{
				InputIndex: idx,
				Output:     fmt.Sprint(edge.Output()),
				TargetID:   edge.Target().ID(),
				Reflexive:  edge.Reflexive(),
			})
		}
		records = append(records, rec)
	})

	return records
}
