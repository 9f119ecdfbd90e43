package jobs

import (
	"fmt"
	"testing"

	"handsynth/internal/domain"
)

// TestEventBusSequencesAndFilters checks incremental reads.
func TestEventBusSequencesAndFilters(t *testing.T) {
	bus := NewEventBus(10)

	first := bus.Publish(Event{Type: EventTypeStatus, Status: domain.RunStatusInitializing})
	second := bus.Publish(Event{Type: EventTypeProgress, Progress: 0.5})
	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("seqs = %d, %d", first.Seq, second.Seq)
	}
	if first.Timestamp.IsZero() {
		t.Fatal("publish should stamp events")
	}

	all := bus.Since(0)
	if len(all) != 2 {
		t.Fatalf("Since(0) = %d events", len(all))
	}

	tail := bus.Since(first.Seq)
	if len(tail) != 1 || tail[0].Type != EventTypeProgress {
		t.Fatalf("Since(%d) = %+v", first.Seq, tail)
	}

	if got := bus.Since(second.Seq); len(got) != 0 {
		t.Fatalf("Since(latest) = %d events", len(got))
	}
}

// TestEventBusTrimsToCapacity checks the bounded buffer keeps the newest
// events and their original sequence numbers.
func TestEventBusTrimsToCapacity(t *testing.T) {
	bus := NewEventBus(3)

	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: EventTypeMessage, Message: fmt.Sprintf("m%d", i)})
	}

	kept := bus.Since(0)
	if len(kept) != 3 {
		t.Fatalf("kept = %d events", len(kept))
	}
	if kept[0].Seq != 3 || kept[2].Seq != 5 {
		t.Fatalf("kept seqs = %d..%d", kept[0].Seq, kept[2].Seq)
	}
	if kept[2].Message != "m4" {
		t.Fatalf("newest = %q", kept[2].Message)
	}
}
