package pnrmg

// castleMask clears castling rights whenever a move touches a king or rook home square.
var castleMask [128]CastlingRights

func init() {
	for i := range castleMask {
		castleMask[i] = 0xF
	}
	castleMask[A1] &^= CastleWhiteQueen
	castleMask[E1] &^= CastleWhiteKing | CastleWhiteQueen
	castleMask[H1] &^= CastleWhiteKing
	castleMask[A8] &^= CastleBlackQueen
	castleMask[E8] &^= CastleBlackKing | CastleBlackQueen
	castleMask[H8] &^= CastleBlackKing
}

// castleRookSquares returns the rook's from and to squares for a castling move.
func castleRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}

// pawnForward is the push direction of each side.
var pawnForward = [2]Square{16, -16}

// MakeMove plays a pseudo-legal move and returns the record TakeBack needs.
// Legality (own king left in check) is the caller's concern.
func (b *Board) MakeMove(m Move) Undo {
	from, to, kind := m.From(), m.To(), m.Kind()
	st := b.state
	us := st.SideToMove()
	them := us.Other()
	u := newUndo(st, m)

	mover := b.squares[from].Type()
	half := st.HalfmoveClock() + 1

	capSq := to
	if kind == KindEnPassant {
		capSq = to - pawnForward[us]
	}
	if b.squares[capSq] != Empty {
		victim, idx := b.removePiece(capSq)
		b.capturedValue[them] += PieceValue[victim.Type()]
		u = u.withCapture(victim.Type(), idx)
		half = 0
	}

	if m.IsPromotion() {
		_, idx := b.removePiece(from)
		u = u.withPawnIndex(idx)
		b.addPiece(to, MakePiece(us, m.PromotionType()))
	} else {
		b.movePiece(from, to)
	}
	if kind == KindCastleKing || kind == KindCastleQueen {
		rf, rt := castleRookSquares(to)
		b.movePiece(rf, rt)
	}

	epFile := 0
	if mover == Pawn {
		half = 0
		// Only record the target when an enemy pawn could take it.
		if to-from == 2*pawnForward[us] {
			enemyPawn := MakePiece(them, Pawn)
			if (to+1).OnBoard() && b.squares[to+1] == enemyPawn ||
				(to-1).OnBoard() && b.squares[to-1] == enemyPawn {
				epFile = to.File() + 1
			}
		}
	}

	next := st.withSide(them).
		withCastling(st.Castling() & castleMask[from] & castleMask[to]).
		withEPFile(epFile).
		withHalfmove(half)
	if us == Black {
		next = next.withFullmove(st.FullmoveNumber() + 1)
	}
	b.state = next
	b.zobristIncremental ^= zobristSide
	b.repetition.Increment(b.ZobristKey())
	return u
}

// TakeBack reverses the MakeMove that produced u, restoring the board
// bit for bit including piece-list order and the repetition table.
func (b *Board) TakeBack(u Undo) {
	b.repetition.Decrement(b.ZobristKey())
	m := u.Move()
	from, to, kind := m.From(), m.To(), m.Kind()
	prev := u.State()
	us := prev.SideToMove()
	them := us.Other()

	b.zobristIncremental ^= zobristSide
	if kind == KindCastleKing || kind == KindCastleQueen {
		rf, rt := castleRookSquares(to)
		b.movePiece(rt, rf)
	}
	if m.IsPromotion() {
		b.removePiece(to)
		b.insertPiece(from, MakePiece(us, Pawn), u.promotedPawnIndex())
	} else {
		b.movePiece(to, from)
	}
	if t := u.CapturedType(); t != NoPieceType {
		capSq := to
		if kind == KindEnPassant {
			capSq = to - pawnForward[us]
		}
		b.insertPiece(capSq, MakePiece(them, t), u.capturedIndex())
		b.capturedValue[them] -= PieceValue[t]
	}
	b.state = prev
}

// MakeNullMove passes the turn. The repetition table is left alone.
func (b *Board) MakeNullMove() State {
	prev := b.state
	b.state = prev.withSide(prev.SideToMove().Other()).
		withEPFile(0).
		withHalfmove(prev.HalfmoveClock() + 1)
	b.zobristIncremental ^= zobristSide
	return prev
}

// UnmakeNullMove restores the state returned by MakeNullMove.
func (b *Board) UnmakeNullMove(prev State) {
	b.state = prev
	b.zobristIncremental ^= zobristSide
}

// RepetitionCount returns how often the current position has occurred.
func (b *Board) RepetitionCount() int {
	return int(b.repetition.Count(b.ZobristKey()))
}
