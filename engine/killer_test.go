package engine

import (
	"testing"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func TestKillerInsertKeepsTwoNewest(t *testing.T) {
	var k killerTable
	a := pnrmg.NewMove(square("g1"), square("f3"), pnrmg.KindNormal)
	b := pnrmg.NewMove(square("b1"), square("c3"), pnrmg.KindNormal)
	c := pnrmg.NewMove(square("e2"), square("e4"), pnrmg.KindNormal)
	k.insert(a, 3)
	k.insert(a, 3)
	k.insert(b, 3)
	if !k.isKiller(a, 3) || !k.isKiller(b, 3) || k.isKiller(a, 4) {
		t.Fatalf("killers at ply 3 are %v", k.moves[3])
	}
	k.insert(c, 3)
	if k.isKiller(a, 3) || k.moves[3][0] != c {
		t.Fatalf("oldest killer kept: %v", k.moves[3])
	}
}

func TestHistoryHalvesInsteadOfWrapping(t *testing.T) {
	h := newHistoryTable(8)
	p := pnrmg.WhiteKnight
	hot := pnrmg.NewMove(square("g1"), square("f3"), pnrmg.KindNormal)
	cold := pnrmg.NewMove(square("b1"), square("c3"), pnrmg.KindNormal)
	h.credit(p, cold, 10)
	// Enough credit to overflow a uint32 several times over without ageing.
	for i := 0; i < 500000; i++ {
		h.credit(p, hot, 100)
	}
	if h.max >= historyLimit {
		t.Fatalf("largest counter %d reached the limit", h.max)
	}
	if v := h.piece[p+6][hot.From().To64()][hot.To().To64()]; v < historyLimit/2 {
		t.Fatalf("hot counter %d wrapped", v)
	}
	if got := h.score(p, hot); got < 1<<7 || got >= 1<<8 {
		t.Fatalf("hot move scores %d, want the top of the 8 bit range", got)
	}
	if h.score(p, cold) >= h.score(p, hot) {
		t.Fatalf("cold move scores %d, hot move %d", h.score(p, cold), h.score(p, hot))
	}
}
