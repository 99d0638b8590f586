package pnrmg

// Move encodes a move in 17 bits: from (7), to (7) and kind (3). Moves are
// compared by value; ordering scores live next to them in generator buffers.
type Move uint32

// MoveKind distinguishes the special moves.
type MoveKind uint8

const (
	KindNormal MoveKind = iota
	KindCastleKing
	KindCastleQueen
	KindEnPassant
	KindPromoKnight
	KindPromoBishop
	KindPromoRook
	KindPromoQueen
)

const (
	moveToShift   = 7
	moveKindShift = 14
	moveBits      = 17
	moveMask      = 1<<moveBits - 1
)

// NoMove is the null move value (a1a1), never produced by the generator.
const NoMove Move = 0

// NewMove packs a move.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(uint32(from)&0x7F | (uint32(to)&0x7F)<<moveToShift | uint32(kind)<<moveKindShift)
}

// NewPromotion packs a promotion to the given piece type.
func NewPromotion(from, to Square, t PieceType) Move {
	return NewMove(from, to, MoveKind(t)+KindPromoKnight-MoveKind(Knight))
}

func (m Move) From() Square { return Square(m & 0x7F) }
func (m Move) To() Square { return Square(m >> moveToShift & 0x7F) }
func (m Move) Kind() MoveKind { return MoveKind(m >> moveKindShift & 7) }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m.Kind() >= KindPromoKnight }

// IsCastle reports whether the move castles on either wing.
func (m Move) IsCastle() bool { k := m.Kind(); return k == KindCastleKing || k == KindCastleQueen }

// PromotionType returns the piece type a pawn promotes to, or NoPieceType.
func (m Move) PromotionType() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return PieceType(m.Kind()-KindPromoKnight) + Knight
}

var promoLetters = [7]byte{0, 'p', 'n', 'b', 'r', 'q', 'k'}

// String renders the move in coordinate form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoLetters[m.PromotionType()])
	}
	return s
}

// SimpleString is String with an "e.p." suffix on en-passant captures.
func (m Move) SimpleString() string {
	if m.Kind() == KindEnPassant {
		return m.String() + "e.p."
	}
	return m.String()
}

// Undo packs everything TakeBack needs to restore the board exactly:
// the prior State (32 bits), the move (17), the captured piece type (3),
// the captured piece's list index (4) and the promoted pawn's list index (4).
type Undo uint64

const (
	undoMoveShift     = 32
	undoCapturedShift = undoMoveShift + moveBits
	undoCapIdxShift   = undoCapturedShift + 3
	undoPawnIdxShift  = undoCapIdxShift + 4
)

func newUndo(st State, m Move) Undo {
	return Undo(st) | Undo(m&moveMask)<<undoMoveShift
}

func (u Undo) State() State { return State(u) }
func (u Undo) Move() Move { return Move(u>>undoMoveShift) & moveMask }
func (u Undo) CapturedType() PieceType { return PieceType(u>>undoCapturedShift) & 7 }
func (u Undo) capturedIndex() int8 { return int8(u>>undoCapIdxShift) & 0xF }
func (u Undo) promotedPawnIndex() int8 { return int8(u>>undoPawnIdxShift) & 0xF }
func (u Undo) withCapture(t PieceType, idx int8) Undo {
	return u | Undo(t)<<undoCapturedShift | Undo(idx)<<undoCapIdxShift
}
func (u Undo) withPawnIndex(idx int8) Undo { return u | Undo(idx)<<undoPawnIdxShift }
