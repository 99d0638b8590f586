package pnrmg_test

import (
	"testing"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func TestRepetitionCountKnightShuffle(t *testing.T) {
	b := pnrmg.NewBoard()
	if got := b.RepetitionCount(); got != 1 {
		t.Fatalf("start position count %d want 1", got)
	}
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	var undos []pnrmg.Undo
	for round := 2; round <= 3; round++ {
		for _, mv := range cycle {
			undos = append(undos, b.MakeMove(mustMove(t, b, mv)))
		}
		if got := b.RepetitionCount(); got != round {
			t.Fatalf("after %d cycles count %d want %d", round-1, got, round)
		}
	}
	last := len(undos) - 1
	b.TakeBack(undos[last])
	if got := b.RepetitionCount(); got != 2 {
		t.Fatalf("after one take back count %d want 2", got)
	}
	// The start position went from three occurrences to two.
	undos[last] = b.MakeMove(mustMove(t, b, "f6g8"))
	if got := b.RepetitionCount(); got != 3 {
		t.Fatalf("replaying the last move count %d want 3", got)
	}
	for i := len(undos) - 1; i >= 0; i-- {
		b.TakeBack(undos[i])
	}
	if *b != *pnrmg.NewBoard() {
		t.Fatalf("unwinding the shuffle did not restore the board")
	}
}

func TestRepetitionTableCollisions(t *testing.T) {
	var r pnrmg.RepetitionTable
	// Same home slot (top bits), different keys.
	keys := []uint64{0xABC0000000000001, 0xABC0000000000002, 0xABC0000000000003, 0xABD0000000000001}
	for _, k := range keys {
		if r.Increment(k) != 1 {
			t.Fatalf("fresh key %x counted twice", k)
		}
	}
	if r.Increment(keys[1]) != 2 || r.Count(keys[1]) != 2 {
		t.Fatalf("second occurrence not counted")
	}
	snapshot := r
	r.Increment(0xABC0000000000009)
	r.Decrement(0xABC0000000000009)
	if r != snapshot {
		t.Fatalf("increment/decrement pair changed the layout")
	}
	r.Decrement(keys[0])
	for _, k := range keys[1:] {
		if r.Count(k) == 0 {
			t.Fatalf("key %x lost after deleting a cluster neighbour", k)
		}
	}
	if r.Count(keys[0]) != 0 {
		t.Fatalf("deleted key still counted")
	}
	r.Decrement(0x1234)
	r.Clear()
	if r.Count(keys[1]) != 0 {
		t.Fatalf("Clear kept entries")
	}
}

func TestRepetitionDecrementUndoesOneIncrement(t *testing.T) {
	var r pnrmg.RepetitionTable
	const key = 0x9E3779B97F4A7C15
	for want := 1; want <= 3; want++ {
		if got := r.Increment(key); got != want {
			t.Fatalf("increment %d returned %d", want, got)
		}
	}
	r.Decrement(key)
	if got := r.Count(key); got != 2 {
		t.Fatalf("three increments and one decrement left %d, want 2", got)
	}
	r.Decrement(key)
	r.Decrement(key)
	if got := r.Count(key); got != 0 || r != (pnrmg.RepetitionTable{}) {
		t.Fatalf("fully decremented key left count %d", got)
	}
}
