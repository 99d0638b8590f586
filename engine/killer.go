package engine

import (
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// killerTable keeps the two most recent quiet moves that raised alpha at each ply.
type killerTable struct {
	moves [MaxPly + 1][2]pnrmg.Move
}

// insert records move at ply, pushing the older killer out.
func (k *killerTable) insert(move pnrmg.Move, ply int) {
	if move != k.moves[ply][0] {
		k.moves[ply][1] = k.moves[ply][0]
		k.moves[ply][0] = move
	}
}

func (k *killerTable) isKiller(move pnrmg.Move, ply int) bool {
	return move == k.moves[ply][0] || move == k.moves[ply][1]
}

func (k *killerTable) clear() {
	*k = killerTable{}
}

/*
HISTORY
Quiet moves that improved alpha are credited by depth squared, once in the
table of the moving piece and once in a global from/to table that serves
pieces without much history of their own. Ordering reads the counters
through a right shift that grows whenever the largest counter outgrows the
configured bit width, so the scores stay comparable with the other ordering
terms however long the game runs. Once the largest counter reaches
historyLimit every counter is halved and the shift recomputed, so long
analyses never wrap a counter.
*/

const historyLimit = 1 << 30
type historyTable struct {
	piece  [13][64][64]uint32
	global [64][64]uint32
	max    uint32
	shift  uint
	bits   uint
}

func newHistoryTable(bits int) historyTable {
	return historyTable{bits: uint(bits)}
}

func (h *historyTable) credit(p pnrmg.Piece, m pnrmg.Move, depth int) {
	from, to := m.From().To64(), m.To().To64()
	bonus := uint32(depth * depth)
	v := h.piece[p+6][from][to] + bonus
	h.piece[p+6][from][to] = v
	h.global[from][to] += bonus
	if g := h.global[from][to]; g > v {
		v = g
	}
	if v > h.max {
		h.max = v
		if h.max >= historyLimit {
			h.halve()
		}
		for h.max>>h.shift >= 1<<h.bits {
			h.shift++
		}
	}
}

// halve ages every counter, keeping their order.
func (h *historyTable) halve() {
	for p := range h.piece {
		for from := range h.piece[p] {
			for to := range h.piece[p][from] {
				h.piece[p][from][to] >>= 1
			}
		}
	}
	for from := range h.global {
		for to := range h.global[from] {
			h.global[from][to] >>= 1
		}
	}
	h.max >>= 1
	h.shift = 0
}

// score returns the ordering value of a quiet move, in [0, 1<<bits).
func (h *historyTable) score(p pnrmg.Piece, m pnrmg.Move) int {
	from, to := m.From().To64(), m.To().To64()
	v := h.piece[p+6][from][to]
	// Half weight for the global fallback.
	if g := h.global[from][to] >> 1; g > v {
		v = g
	}
	return int(v >> h.shift)
}

func (h *historyTable) clear() {
	*h = historyTable{bits: h.bits}
}
