package badger

import (
	"context"
	"testing"

	"github.com/otterlearn/reusecache/snapshot"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	s, err := New(&Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rec := snapshot.NodeRecord{ID: 1, Edges: []snapshot.EdgeRecord{{InputIndex: 0, Output: "ok", TargetID: 2}}}
	key := rec.Hash()

	if err := s.Put(ctx, key, snapshot.Encode(rec)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, ok, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be found")
	}

	decoded, err := snapshot.Decode(value)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.ID != rec.ID {
		t.Errorf("decoded.ID = %d, want %d", decoded.ID, rec.ID)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	s, err := New(&Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	var key [32]byte
	_, ok, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected key to be absent")
	}
}

func TestNew_RequiresDataDir(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("New should fail without a DataDir")
	}
}
