package symbolcache

import (
	"context"
	"errors"
	"testing"
)

// fakeOracle counts resets and queries and answers deterministically based
// on the sequence of inputs since the last reset.
type fakeOracle struct {
	resets  int
	queries int
	trace   []string
}

func (f *fakeOracle) Reset(_ context.Context) error {
	f.resets++
	f.trace = nil
	return nil
}

func (f *fakeOracle) Query(_ context.Context, i string) (string, error) {
	f.queries++
	f.trace = append(f.trace, i)
	return i + "-" + string(rune('0'+len(f.trace))), nil
}

func TestCache_RepeatedTraceHitsCacheNotDelegate(t *testing.T) {
	f := &fakeOracle{}
	c := New[string, string](f)
	ctx := context.Background()

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	o1, err := c.Query(ctx, "a")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	o2, err := c.Query(ctx, "b")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("second Reset failed: %v", err)
	}
	r1, err := c.Query(ctx, "a")
	if err != nil {
		t.Fatalf("replay Query failed: %v", err)
	}
	r2, err := c.Query(ctx, "b")
	if err != nil {
		t.Fatalf("replay Query failed: %v", err)
	}

	if r1 != o1 || r2 != o2 {
		t.Errorf("replayed outputs (%q, %q) != original (%q, %q)", r1, r2, o1, o2)
	}
	if f.queries != 2 {
		t.Errorf("delegate.queries = %d, want 2 (second pass should be fully cached)", f.queries)
	}
}

func TestCache_DivergingTraceReplaysBeforeDelegateCall(t *testing.T) {
	f := &fakeOracle{}
	c := New[string, string](f)
	ctx := context.Background()

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := c.Query(ctx, "a"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := c.Query(ctx, "b"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("second Reset failed: %v", err)
	}
	if _, err := c.Query(ctx, "a"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	// "c" was never seen from this state: this must invalidate the trace,
	// replay "a" against the delegate, then query "c" fresh.
	before := f.queries
	if _, err := c.Query(ctx, "c"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	after := f.queries

	// replay of "a" plus the fresh "c" query: two delegate calls.
	if after-before != 2 {
		t.Errorf("delegate queries during divergence = %d, want 2 (replay + fresh)", after-before)
	}
	if c.StateCount() != 4 {
		t.Errorf("StateCount() = %d, want 4 (init, after a, after a-b, after a-c)", c.StateCount())
	}
}

func TestCache_QueryBeforeResetPropagatesDelegateError(t *testing.T) {
	c := New[string, string](&erroringOracle{})
	if _, err := c.Query(context.Background(), "a"); err == nil {
		t.Fatal("expected delegate error to propagate")
	}
}

type erroringOracle struct{}

func (erroringOracle) Reset(context.Context) error { return nil }
func (erroringOracle) Query(context.Context, string) (string, error) {
	return "", errors.New("sul unavailable")
}
