package telemetry

import "testing"

func TestWindow_TalliesByOutcome(t *testing.T) {
	w, err := NewWindow(10)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}

	w.RecordCacheHit()
	w.RecordCacheHit()
	w.RecordReset()
	w.RecordContinue()
	w.RecordContinue()
	w.RecordContinue()

	snap := w.Snapshot()
	if snap.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", snap.CacheHits)
	}
	if snap.Resets != 1 {
		t.Errorf("Resets = %d, want 1", snap.Resets)
	}
	if snap.Continues != 3 {
		t.Errorf("Continues = %d, want 3", snap.Continues)
	}
	if len(snap.Recent) != 6 {
		t.Errorf("len(Recent) = %d, want 6", len(snap.Recent))
	}
}

func TestWindow_BoundsRecentEvents(t *testing.T) {
	w, err := NewWindow(3)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		w.RecordReset()
	}

	snap := w.Snapshot()
	if len(snap.Recent) != 3 {
		t.Errorf("len(Recent) = %d, want 3 (bounded window)", len(snap.Recent))
	}
	if snap.Resets != 10 {
		t.Errorf("Resets = %d, want 10 (counters are not bounded)", snap.Resets)
	}
}

func TestWindow_ResetCounters(t *testing.T) {
	w, err := NewWindow(5)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}
	w.RecordCacheHit()
	w.ResetCounters()

	snap := w.Snapshot()
	if snap.CacheHits != 0 || snap.Resets != 0 || snap.Continues != 0 {
		t.Errorf("counters after ResetCounters = %+v, want all zero", snap)
	}
	if len(snap.Recent) != 1 {
		t.Errorf("ResetCounters should not clear the recent-activity window, got %d events", len(snap.Recent))
	}
}
