package pnrmg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

const pieceChars = "kqrbnp.PNBRQK"

// pieceFromChar converts a FEN character to the corresponding Piece constant.
func pieceFromChar(ch byte) (Piece, bool) {
	i := strings.IndexByte(pieceChars, ch)
	if i < 0 || ch == '.' {
		return Empty, false
	}
	return Piece(i - 6), true
}

// charFromPiece converts a Piece to its FEN character.
func charFromPiece(p Piece) byte { return pieceChars[int(p)+6] }

// ParseFEN returns a new Board set up from a FEN string.
func ParseFEN(fen string) (*Board, error) {
	b := &Board{}
	if err := b.SetFEN(fen); err != nil {
		return nil, err
	}
	return b, nil
}

// SetFEN replaces the position. The half-move and full-move fields are optional.
// On error the board is left cleared.
func (b *Board) SetFEN(fen string) error {
	b.Clear()
	err := b.setFEN(fen)
	if err != nil {
		b.Clear()
		return fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, err)
	}
	return nil
}

func (b *Board) setFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return errors.New("not enough fields")
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return errors.New("incorrect number of ranks")
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p, ok := pieceFromChar(ch)
			if !ok {
				return fmt.Errorf("unrecognized piece character %q", ch)
			}
			if file >= 8 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}
			if b.pieceCount[p.Type()][p.Color()] >= maxPieceList {
				return errors.New("too many pieces")
			}
			b.addPiece(MakeSquare(file, rank), p)
			file++
		}
		if file != 8 {
			return fmt.Errorf("rank %d does not cover 8 files", rank+1)
		}
	}
	for c := White; c <= Black; c++ {
		if b.pieceCount[King][c] != 1 {
			return errors.New("each side needs exactly one king")
		}
	}

	st := State(0)
	switch fields[1] {
	case "w":
	case "b":
		st = st.withSide(Black)
		b.zobristIncremental ^= zobristSide
	default:
		return fmt.Errorf("bad side to move %q", fields[1])
	}

	var cr CastlingRights
	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				cr |= CastleWhiteKing
			case 'Q':
				cr |= CastleWhiteQueen
			case 'k':
				cr |= CastleBlackKing
			case 'q':
				cr |= CastleBlackQueen
			default:
				return fmt.Errorf("bad castling field %q", fields[2])
			}
		}
	}
	// Drop rights the placement cannot support.
	if b.squares[E1] != WhiteKing {
		cr &^= CastleWhiteKing | CastleWhiteQueen
	}
	if b.squares[H1] != WhiteRook {
		cr &^= CastleWhiteKing
	}
	if b.squares[A1] != WhiteRook {
		cr &^= CastleWhiteQueen
	}
	if b.squares[E8] != BlackKing {
		cr &^= CastleBlackKing | CastleBlackQueen
	}
	if b.squares[H8] != BlackRook {
		cr &^= CastleBlackKing
	}
	if b.squares[A8] != BlackRook {
		cr &^= CastleBlackQueen
	}
	st = st.withCastling(cr)

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return fmt.Errorf("bad en passant square %q", fields[3])
		}
		want := 5
		if st.SideToMove() == Black {
			want = 2
		}
		if sq.Rank() != want {
			return fmt.Errorf("en passant square %s on wrong rank", sq)
		}
		st = st.withEPFile(sq.File() + 1)
	}

	half, full := 0, 1
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return fmt.Errorf("bad half-move clock %q", fields[4])
		}
		half = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return fmt.Errorf("bad full-move number %q", fields[5])
		}
		full = n
	}
	b.state = st.withHalfmove(half).withFullmove(full)

	for c := White; c <= Black; c++ {
		if lost := StartingMaterial - b.materialValue[c]; lost > 0 {
			b.capturedValue[c] = lost
		}
	}
	if b.InCheck(b.SideToMove().Other()) {
		return errors.New("side not to move is in check")
	}
	b.repetition.Clear()
	b.repetition.Increment(b.ZobristKey())
	return nil
}

// FEN serializes the position.
func (b *Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.squares[MakeSquare(file, rank)]
			if p == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(charFromPiece(p))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if b.SideToMove() == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	cr := b.state.Castling()
	if cr == 0 {
		sb.WriteByte('-')
	} else {
		for i, ch := range "KQkq" {
			if cr&(1<<i) != 0 {
				sb.WriteRune(ch)
			}
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.EnPassantSquare().String())
	fmt.Fprintf(&sb, " %d %d", b.state.HalfmoveClock(), b.state.FullmoveNumber())
	return sb.String()
}
