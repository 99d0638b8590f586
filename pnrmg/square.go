package pnrmg

import "errors"

// Square is a 0x88 board index: rank*16 + file. Any index with a bit of
// 0x88 set lies off the board.
type Square int

// NoSquare marks an absent square (no en passant target, no king).
const NoSquare Square = -1

const (
	A1 Square = 0x00
	B1 Square = 0x01
	C1 Square = 0x02
	D1 Square = 0x03
	E1 Square = 0x04
	F1 Square = 0x05
	G1 Square = 0x06
	H1 Square = 0x07
	A8 Square = 0x70
	B8 Square = 0x71
	C8 Square = 0x72
	D8 Square = 0x73
	E8 Square = 0x74
	F8 Square = 0x75
	G8 Square = 0x76
	H8 Square = 0x77
)

// MakeSquare builds a square from a 0-based file and rank.
func MakeSquare(file, rank int) Square { return Square(rank<<4 | file) }

// OnBoard reports whether the index is a real square.
func (sq Square) OnBoard() bool { return sq >= 0 && sq&0x88 == 0 }

func (sq Square) File() int { return int(sq) & 7 }
func (sq Square) Rank() int { return int(sq) >> 4 }

// To64 maps the square to the 0..63 a1=0 numbering.
func (sq Square) To64() int { return int(sq)>>4<<3 | int(sq)&7 }

// Sq64 maps a 0..63 index back to 0x88.
func Sq64(i int) Square { return Square(i>>3<<4 | i&7) }

// Bit returns the square's occupancy bit.
func (sq Square) Bit() uint64 { return 1 << uint(sq.To64()) }

// Flip mirrors the square vertically.
func (sq Square) Flip() Square { return sq ^ 0x70 }

func (sq Square) String() string {
	if !sq.OnBoard() {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

var errBadSquare = errors.New("bad square")

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, errBadSquare
	}
	return MakeSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// CastlingRights is the 4-bit castling set.
type CastlingRights uint8

const (
	CastleWhiteKing CastlingRights = 1 << iota
	CastleWhiteQueen
	CastleBlackKing
	CastleBlackQueen
)

// State packs side to move, castling rights, en-passant file, half-move
// clock and full-move number into a single word so it can travel inside Undo.
type State uint32

const (
	stateCastleShift = 1
	stateEPShift     = 5
	stateHalfShift   = 9
	stateFullShift   = 17

	stateCastleMask = 0xF << stateCastleShift
	stateEPMask     = 0xF << stateEPShift
	stateHalfMask   = 0xFF << stateHalfShift
	stateFullMask   = 0x7FFF << stateFullShift
)

func (s State) SideToMove() Color { return Color(s & 1) }
func (s State) Castling() CastlingRights { return CastlingRights(s&stateCastleMask) >> stateCastleShift }

// EPFile returns the en-passant file plus one, or 0 when there is none.
func (s State) EPFile() int { return int(s&stateEPMask) >> stateEPShift }
func (s State) HalfmoveClock() int { return int(s&stateHalfMask) >> stateHalfShift }
func (s State) FullmoveNumber() int { return int(s&stateFullMask) >> stateFullShift }

func (s State) withSide(c Color) State { return s&^1 | State(c) }
func (s State) withCastling(cr CastlingRights) State {
	return s&^stateCastleMask | State(cr)<<stateCastleShift
}
func (s State) withEPFile(f int) State { return s&^stateEPMask | State(f)<<stateEPShift }
func (s State) withHalfmove(n int) State {
	if n > 255 {
		n = 255
	}
	return s&^stateHalfMask | State(n)<<stateHalfShift
}
func (s State) withFullmove(n int) State {
	if n > 0x7FFF {
		n = 0x7FFF
	}
	return s&^stateFullMask | State(n)<<stateFullShift
}
