package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gkoch/PawnsNRoses-sub000/eval"
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func mustParse(t *testing.T, fen string) *pnrmg.Board {
	t.Helper()
	b, err := pnrmg.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN %q: %v", fen, err)
	}
	return b
}

// endsInMate plays line on a copy of b and reports whether the side to move
// is then checkmated.
func endsInMate(t *testing.T, b *pnrmg.Board, line []pnrmg.Move) bool {
	t.Helper()
	c := *b
	for _, m := range line {
		if !c.IsPseudoLegal(m) || !c.IsLegal(m) {
			t.Fatalf("line %v contains illegal move %s", line, m)
		}
		c.MakeMove(m)
	}
	return c.InCheck(c.SideToMove()) && len(c.LegalMoves()) == 0
}

func TestSearchFindsMates(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		first string // empty when several first moves mate equally fast
		plies int
	}{
		{"back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", 1},
		{"two rooks in two", "7k/8/8/8/8/8/R7/1R4K1 w - - 0 1", "", 3},
		{"rook ladder", "8/8/8/7k/1R6/R7/8/6K1 w - - 0 1", "", 7},
	}
	for _, tc := range tests {
		b := mustParse(t, tc.fen)
		before := *b
		var last Info
		e := newTestEngine(WithListener(ListenerFunc(func(info Info) { last = info })))

		move, score := e.Search(b, 12, 20*time.Second)
		if *b != before {
			t.Fatalf("%s: search left the board modified", tc.name)
		}
		if score < MateThreshold {
			t.Fatalf("%s: score %d, want a mate score", tc.name, score)
		}
		if MateScore-score > tc.plies {
			t.Fatalf("%s: mate in %d plies, want at most %d", tc.name, MateScore-score, tc.plies)
		}
		if tc.first != "" && move.String() != tc.first {
			t.Fatalf("%s: best move %s, want %s", tc.name, move, tc.first)
		}
		if len(last.PV) == 0 || last.PV[0] != move {
			t.Fatalf("%s: principal variation %v does not start with %s", tc.name, last.PV, move)
		}
		if !endsInMate(t, b, last.PV) {
			t.Fatalf("%s: principal variation %v does not end in mate", tc.name, last.PV)
		}
		line := e.BestLine(b, 2*MaxPly)
		if len(line) == 0 || line[0] != move || !endsInMate(t, b, line) {
			t.Fatalf("%s: best line %v does not lead to mate", tc.name, line)
		}
		if *b != before {
			t.Fatalf("%s: best line walk left the board modified", tc.name)
		}
	}
}

func TestSearchFindsQueenMateInEight(t *testing.T) {
	if testing.Short() {
		t.Skip("long mate search")
	}
	// Fastest mate is eight moves, fifteen plies.
	b := mustParse(t, "8/8/8/8/8/8/5k2/KQ6 w - - 0 1")
	cfg := DefaultConfig()
	cfg.HashMB = 64
	var last Info
	e := New(cfg, eval.New(eval.DefaultConfig()), WithListener(ListenerFunc(func(info Info) { last = info })))

	move, score := e.Search(b, 0, 60*time.Second)
	if score < MateThreshold {
		t.Fatalf("score %d after depth %d, want a mate score", score, last.Depth)
	}
	if plies := MateScore - score; plies < 15 {
		t.Fatalf("claimed mate in %d plies, the fastest is 15", plies)
	}
	if len(last.PV) == 0 || last.PV[0] != move {
		t.Fatalf("principal variation %v does not start with %s", last.PV, move)
	}
	if !endsInMate(t, b, last.PV) {
		t.Fatalf("principal variation %v does not end in mate", last.PV)
	}
}

func TestSearchReportsEachDepth(t *testing.T) {
	b := pnrmg.NewBoard()
	var depths []int
	e := newTestEngine(WithListener(ListenerFunc(func(info Info) {
		depths = append(depths, info.Depth)
		if len(info.PV) == 0 || info.PV[0] != info.Move {
			t.Errorf("depth %d: PV %v does not start with %s", info.Depth, info.PV, info.Move)
		}
		if info.Nodes == 0 {
			t.Errorf("depth %d: no nodes counted", info.Depth)
		}
	})))
	move, _ := e.Search(b, 4, 0)
	if move == pnrmg.NoMove || !b.IsLegal(move) {
		t.Fatalf("search returned %s", move)
	}
	if len(depths) != 4 {
		t.Fatalf("listener saw depths %v, want 1 through 4", depths)
	}
	for i, d := range depths {
		if d != i+1 {
			t.Fatalf("listener saw depths %v, want 1 through 4", depths)
		}
	}
	if e.Stats().Nodes == 0 {
		t.Fatalf("no nodes counted")
	}
}

func TestSearchRespectsTimeBudget(t *testing.T) {
	b := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	e := newTestEngine()
	start := time.Now()
	move, _ := e.Search(b, 0, 300*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 800*time.Millisecond {
		t.Fatalf("search with a 300ms budget took %v", elapsed)
	}
	if move == pnrmg.NoMove {
		t.Fatalf("timed search resolved no move")
	}
}

func TestCancelStopsSearch(t *testing.T) {
	b := pnrmg.NewBoard()
	e := newTestEngine()
	time.AfterFunc(100*time.Millisecond, func() {
		e.Cancel()
		e.Cancel()
	})
	start := time.Now()
	move, _ := e.Search(b, 0, 0)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("cancelled search ran for %v", elapsed)
	}
	if move == pnrmg.NoMove || !b.IsLegal(move) {
		t.Fatalf("cancelled search returned %s", move)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := *b
	start = time.Now()
	e.SearchContext(ctx, b, 0, 0)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("search with a done context ran for %v", elapsed)
	}
	if *b != before {
		t.Fatalf("cancelled search left the board modified")
	}
}

func TestCancelBeforeSearchIsKept(t *testing.T) {
	b := pnrmg.NewBoard()
	before := *b
	e := newTestEngine()
	e.Cancel()
	start := time.Now()
	e.Search(b, 0, 10*time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("search cancelled before it began ran for %v", elapsed)
	}
	if *b != before {
		t.Fatalf("cancelled search left the board modified")
	}
	// The request ends with the search it stopped.
	move, _ := e.Search(b, 3, 0)
	if move == pnrmg.NoMove || !b.IsLegal(move) {
		t.Fatalf("search after a cancelled one returned %s", move)
	}
}

func TestStorePVKeepsDeeperResults(t *testing.T) {
	b := pnrmg.NewBoard()
	e := newTestEngine()
	e4, err := b.ParseMove("e2e4")
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}
	root := b.ZobristKey()
	u := b.MakeMove(e4)
	child := b.ZobristKey()
	b.TakeBack(u)
	e5 := pnrmg.NewMove(square("e7"), square("e5"), pnrmg.KindNormal)

	e.tt.Set(root, BoundExact, e4, 9, 40, e.age)
	e.tt.Set(child, BoundBeta, e5, 9, 15, e.age)
	e.storePV(b, []pnrmg.Move{e4, e5}, 4, 75)
	if v := e.tt.Read(root); entryBound(v) != BoundExact || entryDepth(v) != 9 || entryScore(v) != 40 {
		t.Fatalf("root entry became depth %d score %d", entryDepth(v), entryScore(v))
	}
	if v := e.tt.Read(child); entryBound(v) != BoundBeta || entryDepth(v) != 9 || entryScore(v) != 15 {
		t.Fatalf("deeper bound became bound %d depth %d score %d", entryBound(v), entryDepth(v), entryScore(v))
	}

	e.tt.Clear()
	e.tt.Set(root, BoundAlpha, e4, 2, 10, e.age)
	e.storePV(b, []pnrmg.Move{e4, e5}, 4, 75)
	if v := e.tt.Read(root); entryBound(v) != BoundExact || entryDepth(v) != 4 || entryScore(v) != 75 {
		t.Fatalf("root entry is bound %d depth %d score %d, want exact 4 75", entryBound(v), entryDepth(v), entryScore(v))
	}
	if v := e.tt.Read(child); entryBound(v) != BoundExact || entryDepth(v) != 3 || entryScore(v) != -75 {
		t.Fatalf("child entry is bound %d depth %d score %d, want exact 3 -75", entryBound(v), entryDepth(v), entryScore(v))
	}
}

func TestRootTreatsThreefoldAsDraw(t *testing.T) {
	b := mustParse(t, "7k/p7/8/8/8/8/8/3Q2K1 w - - 0 1")
	for _, s := range []string{"d1d2", "h8g8", "d2d1", "g8h8", "d1d2", "h8g8", "d2d1"} {
		m, err := b.ParseMove(s)
		if err != nil {
			t.Fatalf("move %s: %v", s, err)
		}
		b.MakeMove(m)
	}
	e := newTestEngine()
	move, score := e.Search(b, 4, 0)
	if move.String() != "g8h8" || score != DrawScore {
		t.Fatalf("got %s with score %d, want the repeating g8h8 scored as a draw", move, score)
	}

	fresh := mustParse(t, "6k1/p7/8/8/8/8/8/3Q2K1 b - - 0 1")
	if _, score := newTestEngine().Search(fresh, 4, 0); score > -500 {
		t.Fatalf("without the history the position scored %d", score)
	}
}

func TestSearchWithoutLegalMoves(t *testing.T) {
	mated := mustParse(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	if move, score := newTestEngine().Search(mated, 3, 0); move != pnrmg.NoMove || score != -MateScore {
		t.Fatalf("checkmated side got %s with score %d", move, score)
	}
	stalemate := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if move, score := newTestEngine().Search(stalemate, 3, 0); move != pnrmg.NoMove || score != DrawScore {
		t.Fatalf("stalemated side got %s with score %d", move, score)
	}
}

type fixedBook struct{ move string }

func (f fixedBook) Probe(b *pnrmg.Board) (pnrmg.Move, bool) {
	m, err := b.ParseMove(f.move)
	return m, err == nil
}

func TestSearchPlaysBookMoves(t *testing.T) {
	b := pnrmg.NewBoard()
	e := newTestEngine(WithBook(fixedBook{"b1c3"}))
	if move, _ := e.Search(b, 6, 0); move.String() != "b1c3" {
		t.Fatalf("book move ignored, searched %s", move)
	}
	e = newTestEngine(WithBook(fixedBook{"e2e5"}))
	if move, _ := e.Search(b, 2, 0); move == pnrmg.NoMove || move.String() == "e2e5" {
		t.Fatalf("unusable book move handled badly: %s", move)
	}
}

func TestAllocateTime(t *testing.T) {
	if got := AllocateTime(45*time.Second, 0, 0, 0); got != time.Second {
		t.Fatalf("sudden death opening: %v", got)
	}
	if got := AllocateTime(60*time.Second, 0, 10, 0); got != 6*time.Second {
		t.Fatalf("ten moves to go: %v", got)
	}
	if got := AllocateTime(500*time.Millisecond, 100*time.Millisecond, 0, 0); got < 89*time.Millisecond || got > 90*time.Millisecond {
		t.Fatalf("increment panic mode: %v", got)
	}
	if got := AllocateTime(10*time.Second, 0, 1, 0); got < 6990*time.Millisecond || got > 7*time.Second {
		t.Fatalf("last move before the control: %v", got)
	}
	if got := AllocateTime(10*time.Millisecond, 0, 0, 0); got != 5*time.Millisecond {
		t.Fatalf("nearly flagged: %v", got)
	}
}
