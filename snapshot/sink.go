package snapshot

import "context"

// Sink defines the interface for persisting exported tree structure: a
// small put/get/close contract that concrete backends (snapshot/badger)
// implement.
type Sink interface {
	// Put stores value under the BLAKE3 fingerprint key. Implementations
	// should treat re-putting an identical value as a cheap no-op.
	Put(ctx context.Context, key [32]byte, value []byte) error

	// Get retrieves the value previously stored under key, or (nil, false)
	// if absent.
	Get(ctx context.Context, key [32]byte) ([]byte, bool, error)

	// Close releases any resources held by the sink.
	Close() error
}

// Write exports tree's current structure and stores every node under its
// content hash, skipping nodes already present. It returns the hashes of
// the exported nodes in export order (root first), which a caller can use
// as an index into the sink independent of the tree's own generation-local
// node ids.
func Write[S any, I comparable, O comparable](ctx context.Context, sink Sink, tree treeLike[S, I, O]) ([][32]byte, error) {
	records := Export[S, I, O](tree)
	hashes := make([][32]byte, len(records))

	for i, rec := range records {
		key := rec.Hash()
		hashes[i] = key

		if _, ok, err := sink.Get(ctx, key); err != nil {
			return nil, err
		} else if ok {
			continue
		}

		if err := sink.Put(ctx, key, Encode(rec)); err != nil {
			return nil, err
		}
	}

	return hashes, nil
}
