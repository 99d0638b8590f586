package engine

import (
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

type stage uint8

const (
	stageTT stage = iota
	stageWinningCaptures
	stagePromotions
	stageKillers
	stageQuiets
	stageLosingCaptures
	stageDone
)

const framesBatch = 16

// frame is the move generation scratch of one ply. Moves are produced stage
// by stage, so a cutoff on the hash move never pays for generating the rest.
type frame struct {
	stage      stage
	quiescence bool
	ttMove     pnrmg.Move
	killers    [2]pnrmg.Move

	raw      []pnrmg.Move
	moves    []scoredMove
	losing   []scoredMove
	idx      int
	exchange exchange
}

// moveGenerator owns one frame per ply of the current search path.
type moveGenerator struct {
	frames []*frame
	depth  int
}

// push returns a reset frame for the next ply.
func (g *moveGenerator) push(ttMove pnrmg.Move, killers [2]pnrmg.Move, quiescence bool) *frame {
	if g.depth == len(g.frames) {
		for i := 0; i < framesBatch; i++ {
			g.frames = append(g.frames, &frame{
				raw:    make([]pnrmg.Move, 0, 64),
				moves:  make([]scoredMove, 0, 64),
				losing: make([]scoredMove, 0, 16),
			})
		}
	}
	f := g.frames[g.depth]
	g.depth++

	f.stage = stageTT
	f.quiescence = quiescence
	f.ttMove = ttMove
	f.killers = killers
	f.moves = f.moves[:0]
	f.losing = f.losing[:0]
	f.idx = 0
	return f
}

func (g *moveGenerator) pop() {
	g.depth--
}

// next returns the next pseudo-legal move to try, or NoMove once every stage
// is exhausted.
func (f *frame) next(e *Engine, b *pnrmg.Board) pnrmg.Move {
	for {
		if f.idx < len(f.moves) {
			m := pickNext(f.moves, f.idx)
			f.idx++
			return m
		}
		f.moves = f.moves[:0]
		f.idx = 0

		switch f.stage {
		case stageTT:
			f.stage = stageWinningCaptures
			if f.ttMove != pnrmg.NoMove && b.IsPseudoLegal(f.ttMove) {
				if !f.quiescence || isTactical(b, f.ttMove) {
					return f.ttMove
				}
				f.ttMove = pnrmg.NoMove
			} else {
				f.ttMove = pnrmg.NoMove
			}

		case stageWinningCaptures:
			f.stage = stagePromotions
			f.raw = b.GenerateCaptures(f.raw[:0])
			for _, m := range f.raw {
				if m == f.ttMove {
					continue
				}
				if s := f.exchange.evaluate(b, m.From(), m.To()); s < 0 {
					f.losing = append(f.losing, scoredMove{m, s})
					continue
				}
				f.moves = append(f.moves, scoredMove{m, captureScore(b, m)})
			}

		case stagePromotions:
			if f.quiescence {
				f.stage = stageDone
			} else {
				f.stage = stageKillers
			}
			f.raw = b.GeneratePromotions(f.raw[:0])
			for _, m := range f.raw {
				if m == f.ttMove || f.quiescence && m.PromotionType() != pnrmg.Queen {
					continue
				}
				f.moves = append(f.moves, scoredMove{m, promotionScore(b, m)})
			}

		case stageKillers:
			f.stage = stageQuiets
			for i, k := range f.killers {
				if k == f.ttMove || !isQuiet(b, k) || !b.IsPseudoLegal(k) {
					f.killers[i] = pnrmg.NoMove
					continue
				}
				f.moves = append(f.moves, scoredMove{k, 2 - i})
			}

		case stageQuiets:
			f.stage = stageLosingCaptures
			f.raw = b.GenerateQuiets(f.raw[:0])
			for _, m := range f.raw {
				if m == f.ttMove || m == f.killers[0] || m == f.killers[1] {
					continue
				}
				f.moves = append(f.moves, scoredMove{m, e.quietScore(b, m)})
			}

		case stageLosingCaptures:
			f.stage = stageDone
			f.moves = append(f.moves, f.losing...)

		default:
			return pnrmg.NoMove
		}
	}
}

// isQuiet reports whether m neither captures nor promotes.
func isQuiet(b *pnrmg.Board, m pnrmg.Move) bool {
	if m == pnrmg.NoMove || m.IsPromotion() || m.Kind() == pnrmg.KindEnPassant {
		return false
	}
	return b.PieceAt(m.To()) == pnrmg.Empty
}

func isTactical(b *pnrmg.Board, m pnrmg.Move) bool {
	return m != pnrmg.NoMove && !isQuiet(b, m)
}
