package engine

import (
	"testing"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func TestSEE(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to string
		want     int
	}{
		{"bishop for knight, queen recaptures", "6k1/4q1p1/4n3/8/2B5/8/8/6K1 w - - 0 1", "c4", "e6", 0},
		{"knight takes queen defended by pawn", "4k3/8/4p3/3q4/8/2N5/8/4K3 w - - 0 1", "c3", "d5", 975 - 325},
		{"queen takes knight defended by pawn", "4k3/8/4p3/3n4/8/8/8/3QK3 w - - 0 1", "d1", "d5", 325 - 975},
		{"rook battery wins the knight", "3r2k1/8/8/3n4/8/8/3R4/3RK3 w - - 0 1", "d2", "d5", 325},
		{"single rook loses the exchange", "3r2k1/8/8/3n4/8/8/3R4/4K3 w - - 0 1", "d2", "d5", 325 - 500},
		{"undefended pawn", "4k3/8/8/3p4/8/8/8/3RK3 w - - 0 1", "d1", "d5", 100},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5", "d6", 100},
	}
	for _, tc := range tests {
		b, err := pnrmg.ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("%s: parse FEN: %v", tc.name, err)
		}
		before := *b
		if got := see(b, square(tc.from), square(tc.to)); got != tc.want {
			t.Fatalf("%s: expected SEE score %d, got %d", tc.name, tc.want, got)
		}
		if *b != before {
			t.Fatalf("%s: SEE modified the board", tc.name)
		}
	}
}

func TestSEEScratchIsReusable(t *testing.T) {
	b, err := pnrmg.ParseFEN("3r2k1/8/8/3n4/8/8/3R4/3RK3 w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	var x exchange
	for i := 0; i < 3; i++ {
		if got := x.evaluate(b, square("d2"), square("d5")); got != 325 {
			t.Fatalf("run %d: expected SEE score 325, got %d", i, got)
		}
	}
}

func square(coord string) pnrmg.Square {
	sq, err := pnrmg.ParseSquare(coord)
	if err != nil {
		panic("invalid coordinate")
	}
	return sq
}
