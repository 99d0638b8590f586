package pnrmg

// Generation categories. A move belongs to exactly one of them.
const (
	genCaptures uint8 = 1 << iota
	genPromotions
	genQuiets

	genAll = genCaptures | genPromotions | genQuiets
)

var (
	pawnStartRank = [2]int{1, 6}
	pawnPromoRank = [2]int{6, 1} // rank a pawn promotes from
	pawnCaptures  = [2][2]Square{{15, 17}, {-15, -17}}
)

// GenerateCaptures appends every non-promotion capture, en passant included.
func (b *Board) GenerateCaptures(dst []Move) []Move { return b.generate(dst, genCaptures) }

// GeneratePromotions appends every promotion, capturing or not, queen first.
func (b *Board) GeneratePromotions(dst []Move) []Move { return b.generate(dst, genPromotions) }

// GenerateQuiets appends every non-capture, non-promotion move including castling.
func (b *Board) GenerateQuiets(dst []Move) []Move { return b.generate(dst, genQuiets) }

// GenerateAll appends every pseudo-legal move.
func (b *Board) GenerateAll(dst []Move) []Move { return b.generate(dst, genAll) }

func (b *Board) generate(dst []Move, mode uint8) []Move {
	us := b.SideToMove()
	for t := Pawn; t <= King; t++ {
		n := b.pieceCount[t][us]
		for i := int8(0); i < n; i++ {
			dst = b.generateFrom(dst, b.pieceList[t][us][i], t, us, mode)
		}
	}
	return dst
}

// generateFrom appends the moves of one piece restricted to the categories in mode.
func (b *Board) generateFrom(dst []Move, from Square, t PieceType, us Color, mode uint8) []Move {
	switch t {
	case Pawn:
		return b.generatePawn(dst, from, us, mode)
	case Knight:
		return b.generateSteps(dst, from, us, knightOffsets[:], mode)
	case Bishop:
		return b.generateSlides(dst, from, us, bishopDirs[:], mode)
	case Rook:
		return b.generateSlides(dst, from, us, rookDirs[:], mode)
	case Queen:
		dst = b.generateSlides(dst, from, us, bishopDirs[:], mode)
		return b.generateSlides(dst, from, us, rookDirs[:], mode)
	case King:
		dst = b.generateSteps(dst, from, us, kingOffsets[:], mode)
		if mode&genQuiets != 0 {
			dst = b.generateCastles(dst, from, us)
		}
		return dst
	}
	return dst
}

func (b *Board) generateSteps(dst []Move, from Square, us Color, offsets []Square, mode uint8) []Move {
	for _, d := range offsets {
		to := from + d
		if !to.OnBoard() {
			continue
		}
		p := b.squares[to]
		switch {
		case p == Empty:
			if mode&genQuiets != 0 {
				dst = append(dst, NewMove(from, to, KindNormal))
			}
		case p.Color() != us:
			if mode&genCaptures != 0 {
				dst = append(dst, NewMove(from, to, KindNormal))
			}
		}
	}
	return dst
}

func (b *Board) generateSlides(dst []Move, from Square, us Color, dirs []Square, mode uint8) []Move {
	for _, d := range dirs {
		for to := from + d; to.OnBoard(); to += d {
			p := b.squares[to]
			if p == Empty {
				if mode&genQuiets != 0 {
					dst = append(dst, NewMove(from, to, KindNormal))
				}
				continue
			}
			if p.Color() != us && mode&genCaptures != 0 {
				dst = append(dst, NewMove(from, to, KindNormal))
			}
			break
		}
	}
	return dst
}

func appendPromotions(dst []Move, from, to Square) []Move {
	return append(dst,
		NewPromotion(from, to, Queen),
		NewPromotion(from, to, Knight),
		NewPromotion(from, to, Rook),
		NewPromotion(from, to, Bishop))
}

func (b *Board) generatePawn(dst []Move, from Square, us Color, mode uint8) []Move {
	fwd := pawnForward[us]
	promoting := from.Rank() == pawnPromoRank[us]
	if promoting && mode&genPromotions == 0 {
		return dst
	}
	if !promoting && mode&(genQuiets|genCaptures) == 0 {
		return dst
	}

	if (promoting || mode&genQuiets != 0) && b.squares[from+fwd] == Empty {
		if promoting {
			dst = appendPromotions(dst, from, from+fwd)
		} else {
			dst = append(dst, NewMove(from, from+fwd, KindNormal))
			if from.Rank() == pawnStartRank[us] && b.squares[from+2*fwd] == Empty {
				dst = append(dst, NewMove(from, from+2*fwd, KindNormal))
			}
		}
	}
	if !promoting && mode&genCaptures == 0 {
		return dst
	}
	ep := b.EnPassantSquare()
	for _, d := range pawnCaptures[us] {
		to := from + d
		if !to.OnBoard() {
			continue
		}
		if p := b.squares[to]; p != Empty && p.Color() != us {
			if promoting {
				dst = appendPromotions(dst, from, to)
			} else {
				dst = append(dst, NewMove(from, to, KindNormal))
			}
		} else if to == ep && !promoting {
			dst = append(dst, NewMove(from, to, KindEnPassant))
		}
	}
	return dst
}

func (b *Board) generateCastles(dst []Move, from Square, us Color) []Move {
	cr := b.state.Castling()
	them := us.Other()
	if us == White {
		if from != E1 || cr&(CastleWhiteKing|CastleWhiteQueen) == 0 || b.IsAttacked(E1, them) {
			return dst
		}
		if cr&CastleWhiteKing != 0 && b.squares[H1] == WhiteRook &&
			b.squares[F1] == Empty && b.squares[G1] == Empty && !b.IsAttacked(F1, them) {
			dst = append(dst, NewMove(E1, G1, KindCastleKing))
		}
		if cr&CastleWhiteQueen != 0 && b.squares[A1] == WhiteRook &&
			b.squares[D1] == Empty && b.squares[C1] == Empty && b.squares[B1] == Empty && !b.IsAttacked(D1, them) {
			dst = append(dst, NewMove(E1, C1, KindCastleQueen))
		}
		return dst
	}
	if from != E8 || cr&(CastleBlackKing|CastleBlackQueen) == 0 || b.IsAttacked(E8, them) {
		return dst
	}
	if cr&CastleBlackKing != 0 && b.squares[H8] == BlackRook &&
		b.squares[F8] == Empty && b.squares[G8] == Empty && !b.IsAttacked(F8, them) {
		dst = append(dst, NewMove(E8, G8, KindCastleKing))
	}
	if cr&CastleBlackQueen != 0 && b.squares[A8] == BlackRook &&
		b.squares[D8] == Empty && b.squares[C8] == Empty && b.squares[B8] == Empty && !b.IsAttacked(D8, them) {
		dst = append(dst, NewMove(E8, C8, KindCastleQueen))
	}
	return dst
}

// IsPseudoLegal reports whether m would be generated in the current position.
// It validates hash and killer moves before they are played.
func (b *Board) IsPseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	from := m.From()
	if !from.OnBoard() || !m.To().OnBoard() {
		return false
	}
	p := b.squares[from]
	us := b.SideToMove()
	if p == Empty || p.Color() != us {
		return false
	}
	var buf [32]Move
	for _, c := range b.generateFrom(buf[:0], from, p.Type(), us, genAll) {
		if c == m {
			return true
		}
	}
	return false
}

// IsLegal reports whether a pseudo-legal move leaves the mover's king safe.
func (b *Board) IsLegal(m Move) bool {
	us := b.SideToMove()
	u := b.MakeMove(m)
	ok := !b.InCheck(us)
	b.TakeBack(u)
	return ok
}

// LegalMoves returns every legal move in generation order.
func (b *Board) LegalMoves() []Move {
	pseudo := b.GenerateAll(make([]Move, 0, 64))
	legal := pseudo[:0]
	for _, m := range pseudo {
		if b.IsLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}
