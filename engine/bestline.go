package engine

import (
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// updatePV makes m followed by the child's line the principal variation of ply.
func (e *Engine) updatePV(ply int, m pnrmg.Move) {
	e.pv[ply][ply] = m
	n := e.pvLen[ply+1]
	copy(e.pv[ply][ply+1:n], e.pv[ply+1][ply+1:n])
	e.pvLen[ply] = Max(n, ply+1)
}

func (e *Engine) principalVariation() []pnrmg.Move {
	n := e.pvLen[0]
	line := make([]pnrmg.Move, n)
	copy(line, e.pv[0][:n])
	return line
}

// storePV writes the line of a completed iteration back as exact entries, so
// that table walks see it even where sibling lines left bounds in the slots.
// Scores alternate sign down the line. Each entry carries the depth the line
// was searched to at that ply; a deeper exact entry is left in place and a
// deeper bound is subject to the usual replacement rules.
func (e *Engine) storePV(b *pnrmg.Board, pv []pnrmg.Move, depth, score int) {
	undos := make([]pnrmg.Undo, 0, len(pv))
	for i, m := range pv {
		if !b.IsPseudoLegal(m) {
			break
		}
		key := b.ZobristKey()
		d := Max(depth-i, 0)
		if v := e.tt.Read(key); v == 0 || entryBound(v) != BoundExact || entryDepth(v) < d {
			e.tt.Set(key, BoundExact, m, d, scoreToTT(score, i), e.age)
		}
		undos = append(undos, b.MakeMove(m))
		score = -score
	}
	for i := len(undos) - 1; i >= 0; i-- {
		b.TakeBack(undos[i])
	}
}

// BestLine walks the transposition table from b along exact entries. The walk
// stops at a missing or non-exact entry, at a move that is not legal, when a
// position occurs for the third time, or after maxLen moves. The board is
// restored before BestLine returns.
func (e *Engine) BestLine(b *pnrmg.Board, maxLen int) []pnrmg.Move {
	var line []pnrmg.Move
	var undos []pnrmg.Undo
	for len(line) < maxLen {
		v := e.tt.Read(b.ZobristKey())
		if v == 0 || entryBound(v) != BoundExact {
			break
		}
		m := entryMove(v)
		if !b.IsPseudoLegal(m) || !b.IsLegal(m) {
			break
		}
		undos = append(undos, b.MakeMove(m))
		line = append(line, m)
		if b.RepetitionCount() >= 3 {
			break
		}
	}
	for i := len(undos) - 1; i >= 0; i-- {
		b.TakeBack(undos[i])
	}
	return line
}
