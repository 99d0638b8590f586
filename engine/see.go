package engine

import (
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// SeePieceValue is the exchange value of each piece type. The king is priced
// so that no exchange ever trades it.
var SeePieceValue = [7]int{0, 100, 325, 325, 500, 975, 10000}

// exchange is the per-ply scratch of static exchange evaluation.
type exchange struct {
	swap      []int
	attackers [2][]pnrmg.Square
	removed   uint64
}

// see is a convenience wrapper with its own scratch, used outside the search.
func see(b *pnrmg.Board, from, to pnrmg.Square) int {
	var x exchange
	return x.evaluate(b, from, to)
}

// evaluate returns the material outcome, from the mover's point of view, of
// the capture sequence started by the piece on from taking on to, assuming
// both sides always recapture with their least valuable piece and stop as
// soon as continuing would lose material.
func (x *exchange) evaluate(b *pnrmg.Board, from, to pnrmg.Square) int {
	us := b.PieceAt(from).Color()
	them := us.Other()

	x.removed = from.Bit()
	x.attackers[us] = b.Attackers(to, us, x.attackers[us][:0])
	x.attackers[them] = b.Attackers(to, them, x.attackers[them][:0])
	x.drop(us, from)

	target := SeePieceValue[b.PieceAt(to).Type()]
	if b.PieceAt(to) == pnrmg.Empty && b.PieceAt(from).Type() == pnrmg.Pawn {
		target = SeePieceValue[pnrmg.Pawn] // en passant
	}
	x.swap = append(x.swap[:0], target)
	onSquare := SeePieceValue[b.PieceAt(from).Type()]
	x.discover(b, from, to)

	side := them
	for len(x.attackers[side]) > 0 {
		// The piece standing on the target is captured next.
		x.swap = append(x.swap, onSquare-x.swap[len(x.swap)-1])

		sq := x.popLeastValuable(b, side)
		x.removed |= sq.Bit()
		onSquare = SeePieceValue[b.PieceAt(sq).Type()]
		x.discover(b, sq, to)
		side = side.Other()
	}

	for i := len(x.swap) - 1; i > 0; i-- {
		if -x.swap[i] < x.swap[i-1] {
			x.swap[i-1] = -x.swap[i]
		}
	}
	return x.swap[0]
}

// drop removes sq from side's attacker list.
func (x *exchange) drop(side pnrmg.Color, sq pnrmg.Square) {
	list := x.attackers[side]
	for i, s := range list {
		if s == sq {
			list[i] = list[len(list)-1]
			x.attackers[side] = list[:len(list)-1]
			return
		}
	}
}

func (x *exchange) popLeastValuable(b *pnrmg.Board, side pnrmg.Color) pnrmg.Square {
	list := x.attackers[side]
	best := 0
	for i := 1; i < len(list); i++ {
		if SeePieceValue[b.PieceAt(list[i]).Type()] < SeePieceValue[b.PieceAt(list[best]).Type()] {
			best = i
		}
	}
	sq := list[best]
	list[best] = list[len(list)-1]
	x.attackers[side] = list[:len(list)-1]
	return sq
}

// discover adds the slider revealed behind sq, looking away from the target,
// if one attacks along that line.
func (x *exchange) discover(b *pnrmg.Board, sq, to pnrmg.Square) {
	step := pnrmg.LineStep(to, sq)
	if step == 0 {
		return
	}
	diagonal := step == 15 || step == -15 || step == 17 || step == -17
	for s := sq + step; s.OnBoard(); s += step {
		p := b.PieceAt(s)
		if p == pnrmg.Empty || x.removed&s.Bit() != 0 {
			continue
		}
		switch p.Type() {
		case pnrmg.Queen:
		case pnrmg.Bishop:
			if !diagonal {
				return
			}
		case pnrmg.Rook:
			if diagonal {
				return
			}
		default:
			return
		}
		c := p.Color()
		for _, a := range x.attackers[c] {
			if a == s {
				return
			}
		}
		x.attackers[c] = append(x.attackers[c], s)
		return
	}
}
