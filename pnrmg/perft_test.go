package pnrmg_test

import (
	"os"
	"testing"

	"github.com/dylhunn/dragontoothmg"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

type perftCase struct {
	name  string
	fen   string
	nodes []uint64 // nodes[i] is perft(i+1)
}

var perftCases = []perftCase{
	{"initial", pnrmg.FENStartPos, []uint64{20, 400, 8902, 197281, 4865609, 119060324}},
	{"kiwipete", kiwipete, []uint64{48, 2039, 97862, 4085603}},
	{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812, 43238, 674624}},
	{"position4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467, 422333}},
	{"position5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379, 2103487}},
	{"en-passant", "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", []uint64{5, 19}},
	{"promotion", "1n5k/P7/8/8/8/8/8/7K w - - 0 1", []uint64{11}},
}

// maxPerftDepth keeps the default run short; PNR_PERFT_DEEP unlocks the full table.
func maxPerftDepth() int {
	if os.Getenv("PNR_PERFT_DEEP") != "" {
		return 6
	}
	if testing.Short() {
		return 3
	}
	return 4
}

func TestPerft(t *testing.T) {
	limit := maxPerftDepth()
	for _, tc := range perftCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			b := mustParse(t, tc.fen)
			before := *b
			for i, want := range tc.nodes {
				depth := i + 1
				if depth > limit {
					break
				}
				if got := b.Perft(depth); got != want {
					t.Fatalf("perft(%d): got %d want %d", depth, got, want)
				}
			}
			if *b != before {
				t.Fatalf("perft left the board modified")
			}
		})
	}
}

// TestPerftDivideMatchesOracle compares per-move subtree counts against an
// independent bitboard generator, which pinpoints the faulty root move.
func TestPerftDivideMatchesOracle(t *testing.T) {
	const depth = 3
	for _, tc := range perftCases {
		b := mustParse(t, tc.fen)
		div := b.PerftDivide(depth)

		ref := dragontoothmg.ParseFen(tc.fen)
		refMoves := ref.GenerateLegalMoves()
		if len(refMoves) != len(div) {
			t.Fatalf("%s: %d root moves, oracle has %d", tc.name, len(div), len(refMoves))
		}
		counts := make(map[string]uint64, len(div))
		for m, n := range div {
			counts[m.String()] = n
		}
		for _, rm := range refMoves {
			undo := ref.Apply(rm)
			want := oraclePerft(&ref, depth-1)
			undo()
			got, ok := counts[rm.String()]
			if !ok {
				t.Fatalf("%s: oracle move %s not generated", tc.name, rm.String())
			}
			if got != want {
				t.Fatalf("%s: divide %s got %d want %d", tc.name, rm.String(), got, want)
			}
		}
	}
}

func oraclePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += oraclePerft(b, depth-1)
		undo()
	}
	return n
}

func BenchmarkPerftInitialD4(b *testing.B) {
	board := mustParse(b, pnrmg.FENStartPos)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.Perft(4)
	}
}

func BenchmarkPerftKiwipeteD3(b *testing.B) {
	board := mustParse(b, kiwipete)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.Perft(3)
	}
}
