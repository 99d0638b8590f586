package pnrmg

import (
	"errors"
	"fmt"
	"math/bits"
)

// Piece is a signed piece code: 0 is an empty square, +1..+6 are White
// pawn..king and -1..-6 the Black counterparts.
type Piece int8

const (
	Empty Piece = 0

	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	BlackPawn   Piece = -1
	BlackKnight Piece = -2
	BlackBishop Piece = -3
	BlackRook   Piece = -4
	BlackQueen  Piece = -5
	BlackKing   Piece = -6
)

// PieceType is a colorless piece kind used for table lookups.
type PieceType uint8

const (
	NoPieceType PieceType = 0
	Pawn        PieceType = 1
	Knight      PieceType = 2
	Bishop      PieceType = 3
	Rook        PieceType = 4
	Queen       PieceType = 5
	King        PieceType = 6
)

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

// Type returns the colorless type of the piece.
func (p Piece) Type() PieceType {
	if p < 0 {
		return PieceType(-p)
	}
	return PieceType(p)
}

// Color returns the owner of the piece. Empty reports White.
func (p Piece) Color() Color {
	if p < 0 {
		return Black
	}
	return White
}

// MakePiece combines a side and a type.
func MakePiece(c Color, t PieceType) Piece {
	if c == Black {
		return -Piece(t)
	}
	return Piece(t)
}

// PieceValue holds the material value of each piece type in centipawns.
// Kings carry no material.
var PieceValue = [7]int{0, 100, 325, 325, 500, 975, 0}

// StartingMaterial is the non-king material of one side in the standard start position.
const StartingMaterial = 8*100 + 2*325 + 2*325 + 2*500 + 975

// StageMax is the endgame end of the Stage() scale; 0 is the opening.
const StageMax = 64

const maxPieceList = 16

// Board is the canonical game state. It is a plain value: copying a Board
// copies the whole position, and two boards are identical iff they compare equal.
type Board struct {
	squares [128]Piece
	state   State

	pieceList     [7][2][maxPieceList]Square
	pieceCount    [7][2]int8
	pieceArrayPos [128]int8

	occupancy [2]uint64

	// zobristIncremental covers piece placement and side to move only;
	// castling and en passant are folded in by ZobristKey.
	zobristIncremental uint64
	zobristPawn        uint64

	materialValue [2]int
	capturedValue [2]int

	repetition RepetitionTable
}

// NewBoard returns a board set up in the standard starting position.
func NewBoard() *Board {
	b := &Board{}
	b.Restart()
	return b
}

// Restart sets up the standard starting position.
func (b *Board) Restart() {
	if err := b.SetFEN(FENStartPos); err != nil {
		panic(err)
	}
}

// Clear empties the board: no pieces, White to move, move number 1.
func (b *Board) Clear() {
	*b = Board{}
	b.state = b.state.withFullmove(1)
	b.repetition.Increment(b.ZobristKey())
}

// PieceAt returns the piece on a square.
func (b *Board) PieceAt(sq Square) Piece { return b.squares[sq] }

// State returns the packed side/castling/en-passant/clock word.
func (b *Board) State() State { return b.state }

// SideToMove reports which side is to play.
func (b *Board) SideToMove() Color { return b.state.SideToMove() }

// HalfmoveClock returns the number of half-moves since the last capture or pawn move.
func (b *Board) HalfmoveClock() int { return b.state.HalfmoveClock() }

// FullmoveNumber returns the full move counter.
func (b *Board) FullmoveNumber() int { return b.state.FullmoveNumber() }

// CastlingRights returns the castling bits.
func (b *Board) CastlingRights() CastlingRights { return b.state.Castling() }

// EnPassantSquare returns the en-passant target square or NoSquare.
func (b *Board) EnPassantSquare() Square {
	f := b.state.EPFile()
	if f == 0 {
		return NoSquare
	}
	if b.state.SideToMove() == White {
		return Square(0x50 + f - 1)
	}
	return Square(0x20 + f - 1)
}

// Occupancy returns the 64-bit occupancy of one side.
func (b *Board) Occupancy(c Color) uint64 { return b.occupancy[c] }

// AllOccupancy returns the occupancy of both sides.
func (b *Board) AllOccupancy() uint64 { return b.occupancy[White] | b.occupancy[Black] }

// PieceCount returns how many pieces of a type a side has.
func (b *Board) PieceCount(c Color, t PieceType) int { return int(b.pieceCount[t][c]) }

// PieceSquares returns the piece list of one type and side. The slice aliases
// board storage and is only valid until the next mutation.
func (b *Board) PieceSquares(c Color, t PieceType) []Square {
	return b.pieceList[t][c][:b.pieceCount[t][c]]
}

// KingSquare returns the square of a side's king, or NoSquare if it has none.
func (b *Board) KingSquare(c Color) Square {
	if b.pieceCount[King][c] == 0 {
		return NoSquare
	}
	return b.pieceList[King][c][0]
}

// InCheck reports whether the king of c is attacked.
func (b *Board) InCheck(c Color) bool {
	ks := b.KingSquare(c)
	return ks != NoSquare && b.IsAttacked(ks, c.Other())
}

// Material returns the running non-king material total of one side.
func (b *Board) Material(c Color) int { return b.materialValue[c] }

// Captured returns the running value of c's pieces lost so far.
func (b *Board) Captured(c Color) int { return b.capturedValue[c] }

// MaterialValue returns the material balance from the side to move's view.
func (b *Board) MaterialValue() int {
	us := b.SideToMove()
	return b.materialValue[us] - b.materialValue[us.Other()]
}

// HasNonPawnMaterial reports whether c still owns a knight, bishop, rook or queen.
func (b *Board) HasNonPawnMaterial(c Color) bool {
	return b.pieceCount[Knight][c]+b.pieceCount[Bishop][c]+b.pieceCount[Rook][c]+b.pieceCount[Queen][c] > 0
}

// Stage estimates how far the game has progressed, from 0 (opening) to
// StageMax (bare endgame), blending captured material with the move number.
func (b *Board) Stage() int {
	stage := (b.capturedValue[White] + b.capturedValue[Black]) * StageMax / 6000
	fm := b.state.FullmoveNumber()
	if fm > 60 {
		fm = 60
	}
	stage += fm * StageMax / 240
	if stage > StageMax {
		stage = StageMax
	}
	return stage
}

// addPiece appends a piece to its list and updates every mirror of the placement.
func (b *Board) addPiece(sq Square, p Piece) {
	t, c := p.Type(), p.Color()
	n := b.pieceCount[t][c]
	b.squares[sq] = p
	b.pieceList[t][c][n] = sq
	b.pieceArrayPos[sq] = n
	b.pieceCount[t][c] = n + 1
	b.occupancy[c] |= sq.Bit()
	key := zobristPiece[c][t][sq.To64()]
	b.zobristIncremental ^= key
	if t == Pawn || t == King {
		b.zobristPawn ^= key
	}
	b.materialValue[c] += PieceValue[t]
}

// removePiece takes the piece off sq, filling its list hole with the last
// entry. It returns the piece and the list index it occupied so that
// insertPiece can restore the exact list order.
func (b *Board) removePiece(sq Square) (Piece, int8) {
	p := b.squares[sq]
	t, c := p.Type(), p.Color()
	idx := b.pieceArrayPos[sq]
	n := b.pieceCount[t][c] - 1
	last := b.pieceList[t][c][n]
	b.pieceList[t][c][idx] = last
	b.pieceArrayPos[last] = idx
	b.pieceList[t][c][n] = 0
	b.pieceArrayPos[sq] = 0
	b.pieceCount[t][c] = n
	b.squares[sq] = Empty
	b.occupancy[c] &^= sq.Bit()
	key := zobristPiece[c][t][sq.To64()]
	b.zobristIncremental ^= key
	if t == Pawn || t == King {
		b.zobristPawn ^= key
	}
	b.materialValue[c] -= PieceValue[t]
	return p, idx
}

// insertPiece is the exact inverse of removePiece.
func (b *Board) insertPiece(sq Square, p Piece, idx int8) {
	t, c := p.Type(), p.Color()
	n := b.pieceCount[t][c]
	if idx < n {
		moved := b.pieceList[t][c][idx]
		b.pieceList[t][c][n] = moved
		b.pieceArrayPos[moved] = n
	}
	b.pieceList[t][c][idx] = sq
	b.pieceArrayPos[sq] = idx
	b.pieceCount[t][c] = n + 1
	b.squares[sq] = p
	b.occupancy[c] |= sq.Bit()
	key := zobristPiece[c][t][sq.To64()]
	b.zobristIncremental ^= key
	if t == Pawn || t == King {
		b.zobristPawn ^= key
	}
	b.materialValue[c] += PieceValue[t]
}

// movePiece relocates a piece to an empty square keeping its list slot.
func (b *Board) movePiece(from, to Square) {
	p := b.squares[from]
	t, c := p.Type(), p.Color()
	idx := b.pieceArrayPos[from]
	b.pieceList[t][c][idx] = to
	b.pieceArrayPos[to] = idx
	b.pieceArrayPos[from] = 0
	b.squares[to] = p
	b.squares[from] = Empty
	b.occupancy[c] ^= from.Bit() | to.Bit()
	key := zobristPiece[c][t][from.To64()] ^ zobristPiece[c][t][to.To64()]
	b.zobristIncremental ^= key
	if t == Pawn || t == King {
		b.zobristPawn ^= key
	}
}

// Validate cross-checks squares, piece lists, reverse index, occupancy,
// Zobrist keys and material. A nil result means the board is consistent.
func (b *Board) Validate() error {
	var occ [2]uint64
	var material [2]int
	var counts [7][2]int8
	for sq := Square(0); sq < 128; sq++ {
		p := b.squares[sq]
		if !sq.OnBoard() {
			if p != Empty {
				return fmt.Errorf("piece %d on off-board index %#x", p, int(sq))
			}
			continue
		}
		if p == Empty {
			if b.pieceArrayPos[sq] != 0 {
				return fmt.Errorf("stale piece index on empty %s", sq)
			}
			continue
		}
		t, c := p.Type(), p.Color()
		if t > King {
			return fmt.Errorf("bad piece code %d on %s", p, sq)
		}
		idx := b.pieceArrayPos[sq]
		if idx >= b.pieceCount[t][c] || b.pieceList[t][c][idx] != sq {
			return fmt.Errorf("piece list does not hold %s", sq)
		}
		occ[c] |= sq.Bit()
		material[c] += PieceValue[t]
		counts[t][c]++
	}
	if counts != b.pieceCount {
		return errors.New("piece counts out of sync")
	}
	for t := Pawn; t <= King; t++ {
		for c := White; c <= Black; c++ {
			for i := b.pieceCount[t][c]; i < maxPieceList; i++ {
				if b.pieceList[t][c][i] != 0 {
					return fmt.Errorf("stale piece list slot %d for type %d", i, t)
				}
			}
		}
	}
	if occ != b.occupancy {
		return errors.New("occupancy out of sync")
	}
	if bits.OnesCount64(occ[White]&occ[Black]) != 0 {
		return errors.New("occupancy overlaps")
	}
	if material != b.materialValue {
		return errors.New("material out of sync")
	}
	if b.ZobristKey() != b.ComputeZobrist() {
		return errors.New("zobrist key out of sync")
	}
	if b.zobristPawn != b.ComputeZobristPawn() {
		return errors.New("pawn zobrist key out of sync")
	}
	return nil
}
