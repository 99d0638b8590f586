package pnrmg_test

import (
	"errors"
	"testing"

	"github.com/notnil/chess"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// oracleSAN maps coordinate moves to SAN using an independent implementation.
func oracleSAN(t *testing.T, fen string) map[string]string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("oracle FEN(%q): %v", fen, err)
	}
	pos := chess.NewGame(opt).Position()
	out := make(map[string]string)
	for _, m := range pos.ValidMoves() {
		out[chess.UCINotation{}.Encode(pos, m)] = chess.AlgebraicNotation{}.Encode(pos, m)
	}
	return out
}

func TestSANMatchesOracle(t *testing.T) {
	fens := append([]string{
		"7k/8/8/8/8/8/8/R3R1K1 w - - 0 1",
		"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
		"4k3/8/8/8/8/2N1N3/8/2N1K3 w - - 0 1",
	}, roundTripFENs...)
	for _, fen := range fens {
		b := mustParse(t, fen)
		want := oracleSAN(t, fen)
		legal := b.LegalMoves()
		if len(legal) != len(want) {
			t.Fatalf("%s: %d legal moves, oracle has %d", fen, len(legal), len(want))
		}
		for _, m := range legal {
			got := b.SAN(m)
			if want[m.String()] != got {
				t.Fatalf("%s: SAN(%s) got %q want %q", fen, m, got, want[m.String()])
			}
			back, err := b.ParseSAN(got)
			if err != nil || back != m {
				t.Fatalf("%s: ParseSAN(%q) got %s, %v", fen, got, back, err)
			}
		}
	}
}

func TestSANMateSuffix(t *testing.T) {
	b := mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if got := b.SAN(mustMove(t, b, "a1a8")); got != "Ra8#" {
		t.Fatalf("back rank mate: got %q want Ra8#", got)
	}
}

func TestParseMoveForms(t *testing.T) {
	b := mustParse(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	m, err := b.ParseMove("e5d6e.p.")
	if err != nil {
		t.Fatalf("ParseMove with e.p. suffix: %v", err)
	}
	if m.Kind() != pnrmg.KindEnPassant || m.SimpleString() != "e5d6e.p." || m.String() != "e5d6" {
		t.Fatalf("en passant move decoded as %s (%s)", m, m.SimpleString())
	}
	if _, err := b.ParseMove("e5e7"); !errors.Is(err, pnrmg.ErrIllegalMove) {
		t.Fatalf("ParseMove(e5e7) error = %v, want ErrIllegalMove", err)
	}
	b = mustParse(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	if m := mustMove(t, b, "A7B8Q"); m.PromotionType() != pnrmg.Queen || !m.IsPromotion() {
		t.Fatalf("promotion decoded as %s", m)
	}
	if _, err := b.ParseSAN("0-0"); !errors.Is(err, pnrmg.ErrIllegalMove) {
		t.Fatalf("ParseSAN(0-0) without rights error = %v", err)
	}
}

func TestSquareText(t *testing.T) {
	for _, s := range []string{"a1", "h1", "e4", "a8", "h8"} {
		sq, err := pnrmg.ParseSquare(s)
		if err != nil || sq.String() != s || !sq.OnBoard() {
			t.Fatalf("ParseSquare(%q) = %v, %v", s, sq, err)
		}
		if pnrmg.Sq64(sq.To64()) != sq {
			t.Fatalf("%s does not survive the 64-square mapping", s)
		}
	}
	if _, err := pnrmg.ParseSquare("i9"); err == nil {
		t.Fatalf("ParseSquare accepted i9")
	}
	if pnrmg.NoMove.String() != "0000" {
		t.Fatalf("NoMove renders as %q", pnrmg.NoMove.String())
	}
}
