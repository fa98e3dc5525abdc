// Package snapshot exports the structural shape of a reusetree.Tree: node
// identities, edges, and which nodes carry a system state, without ever
// exporting the system states themselves. Every exported node is
// fingerprinted with BLAKE3 over its id and shape so a Sink backend can
// deduplicate identical node records.
package snapshot

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// NodeRecord is the exported, system-state-free shape of one
// reusetree.Node: its id, whether it carries a state (never the state
// itself), and the (input-index, output, target-id, reflexive) tuple for
// each outgoing edge.
type NodeRecord struct {
	ID       int
	HasState bool
	Edges    []EdgeRecord
}

// EdgeRecord is the exported shape of one reusetree.Edge.
type EdgeRecord struct {
	InputIndex int
	Output     string
	TargetID   int
	Reflexive  bool
}

// Hash returns the BLAKE3 fingerprint of n's own identity and shape: its
// ID, its HasState flag, and its edges' input indices, outputs, target ids
// and reflexive flags. It is a per-node content key for a Sink's storage
// layer, not a recursive subtree hash. ID is included deliberately: two
// structurally identical but distinct nodes (e.g. two stateless frontier
// leaves with no edges, which occur routinely after FetchSystemState
// detaches state or after several fresh inserts) must not collide on the
// same key. A collision would make Write's dedup-by-Get-before-Put skip
// persisting every node but the first sharing that shape, and since
// EdgeRecord.TargetID references other nodes by this same ID, a
// reconstruction resolving edges by TargetID would then have no record for
// the deduped node's true identity. A Sink keyed this way dedupes only
// truly identical nodes across snapshot generations sharing the same
// ID/shape pairing, never distinct nodes that merely look alike.
func (n NodeRecord) Hash() [32]byte {
	h := blake3.New(32, nil)

	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], uint64(n.ID))
	h.Write(idBuf[:])

	var stateByte byte
	if n.HasState {
		stateByte = 1
	}
	h.Write([]byte{stateByte})

	var buf [8]byte
	for _, e := range n.Edges {
		binary.LittleEndian.PutUint64(buf[:], uint64(e.InputIndex))
		h.Write(buf[:])
		h.Write([]byte(e.Output))
		binary.LittleEndian.PutUint64(buf[:], uint64(e.TargetID))
		h.Write(buf[:])
		var reflexiveByte byte
		if e.Reflexive {
			reflexiveByte = 1
		}
		h.Write([]byte{reflexiveByte})
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
