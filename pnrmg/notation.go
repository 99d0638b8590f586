package pnrmg

import (
	"fmt"
	"strings"
)

var sanLetters = [7]string{"", "", "N", "B", "R", "Q", "K"}

// SAN renders a legal move in short algebraic notation with a check or mate suffix.
func (b *Board) SAN(m Move) string {
	s := b.sanBody(m, nil)
	us := b.SideToMove()
	u := b.MakeMove(m)
	if b.InCheck(us.Other()) {
		if b.hasLegalMove() {
			s += "+"
		} else {
			s += "#"
		}
	}
	b.TakeBack(u)
	return s
}

// sanBody renders a move without check suffix. legal may be nil, in which
// case the legal moves are generated for disambiguation.
func (b *Board) sanBody(m Move, legal []Move) string {
	switch m.Kind() {
	case KindCastleKing:
		return "O-O"
	case KindCastleQueen:
		return "O-O-O"
	}
	from, to := m.From(), m.To()
	t := b.squares[from].Type()
	capture := b.squares[to] != Empty || m.Kind() == KindEnPassant

	var sb strings.Builder
	if t == Pawn {
		if capture {
			sb.WriteByte('a' + byte(from.File()))
		}
	} else {
		sb.WriteString(sanLetters[t])
		if legal == nil {
			legal = b.LegalMoves()
		}
		var sameFile, sameRank, ambiguous bool
		for _, o := range legal {
			if o == m || o.To() != to || o.From() == from || b.squares[o.From()].Type() != t {
				continue
			}
			ambiguous = true
			if o.From().File() == from.File() {
				sameFile = true
			}
			if o.From().Rank() == from.Rank() {
				sameRank = true
			}
		}
		if ambiguous {
			switch {
			case !sameFile:
				sb.WriteByte('a' + byte(from.File()))
			case !sameRank:
				sb.WriteByte('1' + byte(from.Rank()))
			default:
				sb.WriteString(from.String())
			}
		}
	}
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(to.String())
	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteString(sanLetters[m.PromotionType()])
	}
	return sb.String()
}

func (b *Board) hasLegalMove() bool {
	var buf [256]Move
	for _, m := range b.GenerateAll(buf[:0]) {
		if b.IsLegal(m) {
			return true
		}
	}
	return false
}

// ParseMove resolves a coordinate move ("e2e4", "e7e8q", "e5d6e.p.")
// against the legal moves of the position.
func (b *Board) ParseMove(s string) (Move, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	text = strings.TrimSuffix(text, "e.p.")
	for _, m := range b.LegalMoves() {
		if m.String() == text {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}

// ParseSAN resolves a move in short algebraic notation. Check, mate and
// annotation suffixes are ignored, and "0-0" castling is accepted.
func (b *Board) ParseSAN(s string) (Move, error) {
	text := strings.TrimRight(strings.TrimSpace(s), "+#!?")
	text = strings.ReplaceAll(text, "0", "O")
	legal := b.LegalMoves()
	for _, m := range legal {
		body := b.sanBody(m, legal)
		if body == text || strings.ReplaceAll(body, "=", "") == text {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}
