package pnrmg

// Attack table kinds, indexed by to-from+119.
const (
	attackWhitePawn uint8 = 1 << iota
	attackBlackPawn
	attackKnight
	attackBishop
	attackRook
	attackKing
)

var (
	attackMask [239]uint8
	attackStep [239]int8

	knightOffsets = [8]Square{33, 31, 18, 14, -14, -18, -31, -33}
	kingOffsets   = [8]Square{17, 16, 15, 1, -1, -15, -16, -17}
	bishopDirs    = [4]Square{17, 15, -15, -17}
	rookDirs      = [4]Square{16, 1, -1, -16}
)

// attackBits maps a piece type and side to its attack table bits.
var attackBits = [7][2]uint8{
	{},
	{attackWhitePawn, attackBlackPawn},
	{attackKnight, attackKnight},
	{attackBishop, attackBishop},
	{attackRook, attackRook},
	{attackBishop | attackRook, attackBishop | attackRook},
	{attackKing, attackKing},
}

func init() {
	for _, d := range knightOffsets {
		attackMask[d+119] |= attackKnight
	}
	for _, d := range kingOffsets {
		attackMask[d+119] |= attackKing
	}
	attackMask[15+119] |= attackWhitePawn
	attackMask[17+119] |= attackWhitePawn
	attackMask[-15+119] |= attackBlackPawn
	attackMask[-17+119] |= attackBlackPawn
	for _, dir := range bishopDirs {
		for k := Square(1); k < 8; k++ {
			attackMask[dir*k+119] |= attackBishop
			attackStep[dir*k+119] = int8(dir)
		}
	}
	for _, dir := range rookDirs {
		for k := Square(1); k < 8; k++ {
			attackMask[dir*k+119] |= attackRook
			attackStep[dir*k+119] = int8(dir)
		}
	}
}

func isSlider(t PieceType) bool { return t >= Bishop && t <= Queen }

// clearBetween reports whether every square strictly between from and to,
// walking by step, is empty. skip is treated as empty.
func (b *Board) clearBetween(from, to Square, step Square, skip Square) bool {
	for sq := from + step; sq != to; sq += step {
		if b.squares[sq] != Empty && sq != skip {
			return false
		}
	}
	return true
}

// attacksFrom reports whether a piece of type t owned by c standing on from
// attacks target, with skip treated as empty.
func (b *Board) attacksFrom(t PieceType, c Color, from, target, skip Square) bool {
	d := target - from + 119
	if attackMask[d]&attackBits[t][c] == 0 {
		return false
	}
	if !isSlider(t) {
		return true
	}
	return b.clearBetween(from, target, Square(attackStep[d]), skip)
}

// IsAttacked reports whether side by attacks sq.
func (b *Board) IsAttacked(sq Square, by Color) bool {
	for t := Pawn; t <= King; t++ {
		for _, from := range b.pieceList[t][by][:b.pieceCount[t][by]] {
			if b.attacksFrom(t, by, from, sq, NoSquare) {
				return true
			}
		}
	}
	return false
}

// IsAttackedBySliding reports whether a bishop, rook or queen of by attacks sq.
func (b *Board) IsAttackedBySliding(sq Square, by Color) bool {
	for t := Bishop; t <= Queen; t++ {
		for _, from := range b.pieceList[t][by][:b.pieceCount[t][by]] {
			if b.attacksFrom(t, by, from, sq, NoSquare) {
				return true
			}
		}
	}
	return false
}

// Attackers appends the squares of all pieces of by that attack sq.
func (b *Board) Attackers(sq Square, by Color, out []Square) []Square {
	for t := Pawn; t <= King; t++ {
		for _, from := range b.pieceList[t][by][:b.pieceCount[t][by]] {
			if b.attacksFrom(t, by, from, sq, NoSquare) {
				out = append(out, from)
			}
		}
	}
	return out
}

// LineStep returns the unit step leading from one square to another along a
// rank, file or diagonal, or 0 when they are not aligned.
func LineStep(from, to Square) Square {
	d := to - from + 119
	if d < 0 || d >= 239 || attackMask[d]&(attackBishop|attackRook) == 0 {
		return 0
	}
	return Square(attackStep[d])
}

// IsDiscoveredCheck reports whether moving a piece of by from one square to
// another uncovers a slider attack of by on the enemy king.
func (b *Board) IsDiscoveredCheck(from, to Square, by Color) bool {
	ks := b.KingSquare(by.Other())
	if ks == NoSquare {
		return false
	}
	step := LineStep(ks, from)
	// A piece sliding along the king's ray keeps blocking it.
	if step == 0 || LineStep(ks, to) == step {
		return false
	}
	if !b.clearBetween(ks, from, step, NoSquare) {
		return false
	}
	diagonal := step == 15 || step == -15 || step == 17 || step == -17
	for sq := from + step; sq.OnBoard(); sq += step {
		p := b.squares[sq]
		if p == Empty {
			continue
		}
		if p.Color() != by {
			return false
		}
		switch p.Type() {
		case Queen:
			return true
		case Bishop:
			return diagonal
		case Rook:
			return !diagonal
		}
		return false
	}
	return false
}

// IsCheckingMove reports whether the side to move gives check by playing m.
func (b *Board) IsCheckingMove(m Move) bool {
	us := b.SideToMove()
	ks := b.KingSquare(us.Other())
	if ks == NoSquare {
		return false
	}
	switch m.Kind() {
	case KindCastleKing, KindCastleQueen, KindEnPassant:
		u := b.MakeMove(m)
		check := b.IsAttacked(ks, us)
		b.TakeBack(u)
		return check
	}
	from, to := m.From(), m.To()
	t := b.squares[from].Type()
	if m.IsPromotion() {
		t = m.PromotionType()
	}
	if b.attacksFrom(t, us, to, ks, from) {
		return true
	}
	return b.IsDiscoveredCheck(from, to, us)
}
