package domain

import (
	"maps"
	"testing"
)

func TestNewTallyStartsAtZero(t *testing.T) {
	tally := NewTally([]string{"3", "4"})

	want := Snapshot{"3": 0, "4": 0}
	if got := tally.Snapshot(); !maps.Equal(got, want) {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}
	if tally.Total() != 0 {
		t.Fatalf("expected zero total, got %d", tally.Total())
	}
}

func TestTallyIncrement(t *testing.T) {
	tally := NewTally([]string{"3", "4"})

	count, ok := tally.Increment("4")
	if !ok || count != 1 {
		t.Fatalf("Increment(4) = %d, %v", count, ok)
	}
	count, ok = tally.Increment("4")
	if !ok || count != 2 {
		t.Fatalf("second Increment(4) = %d, %v", count, ok)
	}
	if tally.Total() != 2 {
		t.Fatalf("expected total 2, got %d", tally.Total())
	}
}

func TestTallyIncrementUnknownLeavesCountsUnchanged(t *testing.T) {
	tally := NewTally([]string{"3", "4"})
	tally.Increment("3")
	before := tally.Snapshot()

	if _, ok := tally.Increment("5"); ok {
		t.Fatal("expected unknown label to be rejected")
	}
	if tally.Has("5") {
		t.Fatal("unknown label must not become a key")
	}
	if got := tally.Snapshot(); !maps.Equal(got, before) {
		t.Fatalf("snapshot changed: %v -> %v", before, got)
	}
}

func TestTallySnapshotIsACopy(t *testing.T) {
	tally := NewTally([]string{"a"})
	snapshot := tally.Snapshot()
	snapshot["a"] = 99
	snapshot["b"] = 1

	if got := tally.Snapshot(); !maps.Equal(got, Snapshot{"a": 0}) {
		t.Fatalf("tally mutated through snapshot: %v", got)
	}
}
