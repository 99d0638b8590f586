package engine

import (
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

type scoredMove struct {
	move  pnrmg.Move
	score int
}

// Most Valuable Victim - Least Valuable Aggressor; orders winning captures.
var mvvLva = [7][7]int{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 15, 14, 13, 12, 11, 10}, // victim Pawn
	{0, 25, 24, 23, 22, 21, 20}, // victim Knight
	{0, 35, 34, 33, 32, 31, 30}, // victim Bishop
	{0, 45, 44, 43, 42, 41, 40}, // victim Rook
	{0, 55, 54, 53, 52, 51, 50}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},       // victim King
}

/*
Quiet move bonuses, on top of the shifted history score which stays below
1<<HistoryBits.
*/
const (
	checkBonus       = 1 << 12
	seventhRankBonus = 1 << 11
)

// positionalGainer is implemented by evaluators that can estimate how much a
// quiet move improves the mover's piece-square score.
type positionalGainer interface {
	PositionalGain(b *pnrmg.Board, m pnrmg.Move) int
}

func captureScore(b *pnrmg.Board, m pnrmg.Move) int {
	victim := b.PieceAt(m.To()).Type()
	if m.Kind() == pnrmg.KindEnPassant {
		victim = pnrmg.Pawn
	}
	return mvvLva[victim][b.PieceAt(m.From()).Type()]
}

func promotionScore(b *pnrmg.Board, m pnrmg.Move) int {
	return pnrmg.PieceValue[m.PromotionType()] + pnrmg.PieceValue[b.PieceAt(m.To()).Type()]
}

// quietScore blends the history counters with cheap positional hints and a
// bounded random perturbation.
func (e *Engine) quietScore(b *pnrmg.Board, m pnrmg.Move) int {
	p := b.PieceAt(m.From())
	score := e.history.score(p, m)
	if e.gainer != nil {
		score += e.gainer.PositionalGain(b, m)
	}
	if b.IsCheckingMove(m) {
		score += checkBonus
	}
	if p.Type() == pnrmg.Pawn && isSeventhRank(m.To(), p.Color()) {
		score += seventhRankBonus
	}
	if e.cfg.OrderingNoise > 0 {
		score += e.rng.Intn(e.cfg.OrderingNoise + 1)
	}
	return score
}

// isSeventhRank reports whether sq is one step from promotion for c.
func isSeventhRank(sq pnrmg.Square, c pnrmg.Color) bool {
	if c == pnrmg.White {
		return sq.Rank() == 6
	}
	return sq.Rank() == 1
}

// pickNext moves the best scored entry at or after i to position i.
func pickNext(moves []scoredMove, i int) pnrmg.Move {
	best := i
	for j := i + 1; j < len(moves); j++ {
		if moves[j].score > moves[best].score {
			best = j
		}
	}
	moves[i], moves[best] = moves[best], moves[i]
	return moves[i].move
}
