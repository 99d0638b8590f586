package engine

import (
	"testing"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// materialEval scores positions by material only.
type materialEval struct{}

func (materialEval) Evaluate(b *pnrmg.Board) int { return b.MaterialValue() }
func (materialEval) Clear()                      {}

func newTestEngine(opts ...Option) *Engine {
	cfg := DefaultConfig()
	cfg.HashMB = 8
	return New(cfg, materialEval{}, opts...)
}

func TestStagedGenerationOrder(t *testing.T) {
	const fen = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	b, err := pnrmg.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	e := newTestEngine()
	ttMove := pnrmg.NewMove(square("e1"), square("g1"), pnrmg.KindCastleKing)
	killer := pnrmg.NewMove(square("a2"), square("a3"), pnrmg.KindNormal)
	bogusKiller := pnrmg.NewMove(square("a2"), square("a5"), pnrmg.KindNormal)

	f := e.gen.push(ttMove, [2]pnrmg.Move{killer, bogusKiller}, false)
	var order []pnrmg.Move
	for m := f.next(e, b); m != pnrmg.NoMove; m = f.next(e, b) {
		order = append(order, m)
	}
	e.gen.pop()

	all := b.GenerateAll(nil)
	if len(order) != len(all) {
		t.Fatalf("generated %d moves, want %d", len(order), len(all))
	}
	seen := make(map[pnrmg.Move]bool)
	for _, m := range order {
		if seen[m] {
			t.Fatalf("move %s generated twice", m)
		}
		seen[m] = true
	}
	for _, m := range all {
		if !seen[m] {
			t.Fatalf("move %s never generated", m)
		}
	}

	if order[0] != ttMove {
		t.Fatalf("first move %s, want the hash move %s", order[0], ttMove)
	}
	killerAt, firstQuiet, lastQuiet := -1, -1, -1
	lastWinning, firstLosing := -1, -1
	for i := 1; i < len(order); i++ {
		m := order[i]
		switch {
		case m == killer:
			killerAt = i
		case isQuiet(b, m):
			if firstQuiet < 0 {
				firstQuiet = i
			}
			lastQuiet = i
		case see(b, m.From(), m.To()) >= 0:
			lastWinning = i
		default:
			if firstLosing < 0 {
				firstLosing = i
			}
		}
	}
	if killerAt < 0 || killerAt > firstQuiet {
		t.Fatalf("killer at %d, first other quiet at %d", killerAt, firstQuiet)
	}
	if lastWinning > killerAt {
		t.Fatalf("winning capture at %d came after the killer at %d", lastWinning, killerAt)
	}
	if firstLosing >= 0 && firstLosing < lastQuiet {
		t.Fatalf("losing capture at %d came before the quiet move at %d", firstLosing, lastQuiet)
	}
}

func TestQuiescenceFramesSkipQuietMoves(t *testing.T) {
	b, err := pnrmg.ParseFEN("1n5k/P7/8/3p4/4P3/8/8/7K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	e := newTestEngine()
	f := e.gen.push(pnrmg.NewMove(square("h1"), square("g1"), pnrmg.KindNormal), [2]pnrmg.Move{}, true)
	var got []string
	for m := f.next(e, b); m != pnrmg.NoMove; m = f.next(e, b) {
		got = append(got, m.String())
	}
	e.gen.pop()

	want := map[string]bool{"e4d5": true, "a7b8q": true, "a7a8q": true}
	if len(got) != len(want) {
		t.Fatalf("quiescence moves %v, want %d tactical moves", got, len(want))
	}
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected quiescence move %s", s)
		}
	}
}

func TestFramesGrowInBatches(t *testing.T) {
	var g moveGenerator
	var frames []*frame
	for i := 0; i < framesBatch+3; i++ {
		frames = append(frames, g.push(pnrmg.NoMove, [2]pnrmg.Move{}, false))
	}
	if len(g.frames) != 2*framesBatch {
		t.Fatalf("%d frames allocated, want %d", len(g.frames), 2*framesBatch)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		if g.frames[i] != frames[i] {
			t.Fatalf("frame %d moved while growing", i)
		}
		g.pop()
	}
	if g.depth != 0 {
		t.Fatalf("depth %d after popping every frame", g.depth)
	}
}
