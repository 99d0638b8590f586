package engine

import (
	"context"
	"encoding/binary"
	"math/bits"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	MateScore     = 30000
	MateThreshold = MateScore - 1000 // scores beyond this encode a forced mate
	Infinity      = 32000
	DrawScore     = 0

	// MaxPly bounds the length of any search path.
	MaxPly = 128
)

// maxQuiescenceEvasions bounds how many in-check nodes one quiescence line
// expands with every move before falling back to stand pat.
const maxQuiescenceEvasions = 6

// Evaluator scores a position from the side to move's point of view.
type Evaluator interface {
	Evaluate(b *pnrmg.Board) int
	// Clear drops any cached scores; called between games.
	Clear()
}

// Book suggests a move for known positions.
type Book interface {
	Probe(b *pnrmg.Board) (pnrmg.Move, bool)
}

// Info describes one completed iterative deepening depth.
type Info struct {
	Depth   int
	Move    pnrmg.Move
	Score   int
	Elapsed time.Duration
	PV      []pnrmg.Move
	Nodes   uint64
}

// Listener is notified once per completed depth, on the searching goroutine.
type Listener interface {
	DepthCompleted(info Info)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(info Info)

func (f ListenerFunc) DepthCompleted(info Info) { f(info) }

// Option configures an Engine at construction.
type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

func WithListener(l Listener) Option { return func(e *Engine) { e.listener = l } }

// WithBook makes Search play book moves when the position is known.
func WithBook(b Book) Option { return func(e *Engine) { e.book = b } }

// Engine runs iterative deepening principal variation searches. One Engine
// owns its transposition table, move ordering tables and per-ply scratch; it
// must not run two searches at once. Cancel may be called from any goroutine.
type Engine struct {
	cfg      Config
	eval     Evaluator
	gainer   positionalGainer
	book     Book
	listener Listener
	log      zerolog.Logger

	tt      *TransTable
	gen     moveGenerator
	killers killerTable
	history historyTable
	rng     *frand.RNG
	clock   timeHandler

	stop    atomic.Bool
	aborted bool
	stats   Stats
	age     uint16

	pv    [MaxPly + 1][MaxPly + 1]pnrmg.Move
	pvLen [MaxPly + 1]int
}

// New returns an engine using ev for static evaluation.
func New(cfg Config, ev Evaluator, opts ...Option) *Engine {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	e := &Engine{
		cfg:     cfg,
		eval:    ev,
		log:     zerolog.Nop(),
		tt:      NewTransTable(cfg.HashMB),
		history: newHistoryTable(cfg.HistoryBits),
		rng:     frand.NewCustom(seed[:], 1024, 12),
	}
	if g, ok := ev.(positionalGainer); ok {
		e.gainer = g
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewGame forgets everything learned in previous searches.
func (e *Engine) NewGame() {
	e.tt.Clear()
	e.killers.clear()
	e.history.clear()
	e.eval.Clear()
	e.stop.Store(false)
}

// Cancel asks the running search to stop. It is idempotent and safe to call
// from any goroutine; the search returns its best result so far. A Cancel
// that lands before the search begins stops it at its first node. The
// request is dropped when a search returns and by NewGame.
func (e *Engine) Cancel() {
	e.stop.Store(true)
}

// Stats returns the counters of the last search.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Search looks for the best move in b. A maxDepth of 0 leaves the depth to
// the clock, a budget of 0 leaves the time to the depth. It returns NoMove
// when b has no legal move or no move was resolved before cancellation.
// The board is restored before Search returns.
func (e *Engine) Search(b *pnrmg.Board, maxDepth int, budget time.Duration) (pnrmg.Move, int) {
	return e.SearchContext(context.Background(), b, maxDepth, budget)
}

// SearchContext is Search, additionally cancelled when ctx is done.
func (e *Engine) SearchContext(ctx context.Context, b *pnrmg.Board, maxDepth int, budget time.Duration) (pnrmg.Move, int) {
	defer e.stop.Store(false)
	if ctx.Err() != nil {
		e.Cancel()
	}
	stopAfter := context.AfterFunc(ctx, e.Cancel)
	defer stopAfter()

	e.aborted = false
	e.stats = Stats{}
	e.clock.begin(budget, e.cfg.TimeCheckInterval)
	e.age = uint16(b.FullmoveNumber()*2+int(b.SideToMove())) & ageMask

	if e.book != nil {
		if m, ok := e.book.Probe(b); ok && b.IsPseudoLegal(m) && b.IsLegal(m) {
			e.log.Debug().Str("move", m.String()).Msg("book-move")
			return m, 0
		}
	}

	rootMoves := e.orderRootMoves(b)
	if len(rootMoves) == 0 {
		if b.InCheck(b.SideToMove()) {
			return pnrmg.NoMove, -MateScore
		}
		return pnrmg.NoMove, DrawScore
	}

	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	bestMove, bestScore := pnrmg.NoMove, -Infinity
	prevScore := 0
	for depth := 1; depth <= maxDepth; depth++ {
		alpha, beta := -Infinity, Infinity
		if depth > 1 && !isMateScore(prevScore) {
			alpha = prevScore - e.cfg.AspirationWindow
			beta = prevScore + e.cfg.AspirationWindow
		}

		move, score, ok := e.searchRoot(b, rootMoves, depth, alpha, beta)
		if ok {
			bestMove, bestScore = move, score
		}
		if !e.aborted && (score <= alpha || score >= beta) && (alpha > -Infinity || beta < Infinity) {
			e.stats.AspirationMisses++
			e.log.Debug().Int("depth", depth).Int("score", score).
				Int("alpha", alpha).Int("beta", beta).Msg("aspiration-miss")
			move, score, ok = e.searchRoot(b, rootMoves, depth, -Infinity, Infinity)
			if ok {
				bestMove, bestScore = move, score
			}
		}
		if e.aborted {
			break
		}
		prevScore = score

		pv := e.principalVariation()
		e.storePV(b, pv, depth, score)
		if e.listener != nil {
			e.listener.DepthCompleted(Info{
				Depth:   depth,
				Move:    bestMove,
				Score:   bestScore,
				Elapsed: e.clock.elapsed(),
				PV:      pv,
				Nodes:   e.stats.Nodes,
			})
		}
		e.log.Debug().Int("depth", depth).Int("score", score).
			Str("move", bestMove.String()).Uint64("nodes", e.stats.Nodes).Msg("depth-complete")

		if isMateScore(score) && MateScore-Abs(score) <= depth {
			break
		}
		if e.clock.pastSoftLimit() {
			break
		}
	}

	e.log.Debug().Object("stats", e.stats).Dur("elapsed", e.clock.elapsed()).Msg("search-done")
	return bestMove, bestScore
}

// orderRootMoves lists the legal root moves in staged generation order.
func (e *Engine) orderRootMoves(b *pnrmg.Board) []scoredMove {
	var ttMove pnrmg.Move
	if v := e.tt.Read(b.ZobristKey()); v != 0 {
		ttMove = entryMove(v)
	}
	us := b.SideToMove()
	var moves []scoredMove
	f := e.gen.push(ttMove, e.killers.moves[0], false)
	for m := f.next(e, b); m != pnrmg.NoMove; m = f.next(e, b) {
		u := b.MakeMove(m)
		if !b.InCheck(us) {
			moves = append(moves, scoredMove{move: m})
		}
		b.TakeBack(u)
	}
	e.gen.pop()
	return moves
}

/*
searchRoot runs one iteration over the root moves. Unlike interior nodes it
always resolves a move, and a move that repeats the position for the third
time is scored as a draw without searching it. The best move is rotated to
the front so the next iteration tries it first. ok reports whether a move was
fully searched and beat the original alpha, which also holds for a partial
iteration interrupted by cancellation.
*/
func (e *Engine) searchRoot(b *pnrmg.Board, moves []scoredMove, depth, alpha, beta int) (pnrmg.Move, int, bool) {
	origAlpha := alpha
	bestIdx, bestScore := -1, -Infinity
	e.pvLen[0] = 0

	for i := range moves {
		m := moves[i].move
		u := b.MakeMove(m)
		e.pvLen[1] = 1

		var score int
		if b.RepetitionCount() >= 3 {
			score = DrawScore
		} else {
			ext := 0
			if b.InCheck(b.SideToMove()) {
				ext = 1
			}
			newDepth := depth - 1 + ext
			if i == 0 {
				score = -e.alphaBeta(b, newDepth, 1, -beta, -alpha, ext, true)
			} else {
				score = -e.alphaBeta(b, newDepth, 1, -alpha-1, -alpha, ext, true)
				if score > alpha && score < beta && !e.aborted {
					score = -e.alphaBeta(b, newDepth, 1, -beta, -alpha, ext, true)
				}
			}
		}
		b.TakeBack(u)
		if e.aborted {
			break
		}

		if score > bestScore {
			bestIdx, bestScore = i, score
		}
		if score > alpha {
			alpha = score
			e.updatePV(0, m)
			if score >= beta {
				break
			}
		}
	}

	if bestIdx < 0 {
		return pnrmg.NoMove, bestScore, false
	}
	best := moves[bestIdx]
	copy(moves[1:bestIdx+1], moves[:bestIdx])
	moves[0] = best

	if !e.aborted {
		bound := BoundExact
		switch {
		case bestScore <= origAlpha:
			bound = BoundAlpha
		case bestScore >= beta:
			bound = BoundBeta
		}
		e.tt.Set(b.ZobristKey(), bound, best.move, depth, scoreToTT(bestScore, 0), e.age)
	}
	return best.move, bestScore, bestScore > origAlpha
}

// stopped counts the node and reports whether the search must unwind.
func (e *Engine) stopped() bool {
	if e.aborted {
		return true
	}
	e.stats.Nodes++
	if e.stop.Load() || e.clock.expired(e.stats.Nodes) {
		e.aborted = true
	}
	return e.aborted
}

func (e *Engine) alphaBeta(b *pnrmg.Board, depth, ply, alpha, beta, extensions int, nullAllowed bool) int {
	if e.stopped() {
		return 0
	}
	e.pvLen[ply] = ply

	if b.RepetitionCount() >= 3 || b.HalfmoveClock() >= 100 {
		return DrawScore
	}
	if ply >= MaxPly {
		return e.eval.Evaluate(b)
	}

	// Mate distance pruning: no line from here beats a mate already found closer to the root.
	alpha = Max(alpha, -MateScore+ply)
	beta = Min(beta, MateScore-ply-1)
	if alpha >= beta {
		return alpha
	}

	if depth <= 0 {
		return e.quiescence(b, ply, alpha, beta, 0)
	}

	us := b.SideToMove()
	inCheck := b.InCheck(us)
	pvNode := beta-alpha > 1
	key := b.ZobristKey()

	/*
		TRANSPOSITION TABLE
		Mate scores are trusted at any depth. Before taking a cutoff, the hash
		move is replayed: if it would repeat the position a third time the
		stored score came from a line that is a draw here, and is ignored.
	*/
	ttMove := pnrmg.NoMove
	if v := e.tt.Read(key); v != 0 {
		ttMove = entryMove(v)
		score := scoreFromTT(entryScore(v), ply)
		if !pvNode && (entryDepth(v) >= depth || isMateScore(score)) {
			cut := false
			switch entryBound(v) {
			case BoundExact:
				cut = true
			case BoundBeta:
				cut = score >= beta
			case BoundAlpha:
				cut = score <= alpha
			}
			if cut && !e.repeatsOnHashMove(b, ttMove) {
				e.stats.TTCutoffs++
				return score
			}
		}
	}

	/*
		RAZORING
		Material far below alpha near the leaves: confirm with quiescence
		and fail low when it agrees.
	*/
	if !inCheck && !pvNode && depth < len(e.cfg.RazorMargins) && !isMateScore(alpha) {
		margin := e.cfg.RazorMargins[depth]
		if b.MaterialValue()+margin <= alpha {
			v := e.quiescence(b, ply, alpha-margin, alpha-margin+1, 0)
			if e.aborted {
				return 0
			}
			if v <= alpha-margin {
				e.stats.RazoringCutoffs++
				return v
			}
		}
	}

	/*
		NULL MOVE PRUNING
		Pass the turn; if the opponent still cannot reach beta the node is
		pruned. Otherwise a second probe with a window just below being mated
		tells whether passing loses to a mate, which extends the moves here.
	*/
	mateThreat := false
	if nullAllowed && !inCheck && !pvNode && depth >= e.cfg.NullMoveMinDepth &&
		b.HasNonPawnMaterial(us) && !isMateScore(beta) {
		r := e.cfg.NullMoveReduction + depth/4
		prev := b.MakeNullMove()
		v := -e.alphaBeta(b, depth-1-r, ply+1, -beta, -beta+1, extensions, false)
		if !e.aborted && v < beta {
			t := -e.alphaBeta(b, depth-1-r, ply+1, MateThreshold, MateThreshold+1, extensions, false)
			mateThreat = !e.aborted && t < -MateThreshold
		}
		b.UnmakeNullMove(prev)
		if e.aborted {
			return 0
		}
		if v >= beta {
			e.stats.NullMoveCutoffs++
			if isMateScore(v) {
				v = beta
			}
			return v
		}
		if mateThreat {
			e.stats.MateThreats++
		}
	}

	/*
		INTERNAL ITERATIVE DEEPENING
		Without a hash move, a shallower search of this node seeds one.
	*/
	if ttMove == pnrmg.NoMove && depth >= e.cfg.IIDMinDepth {
		e.alphaBeta(b, depth-e.cfg.IIDReduction, ply, alpha, beta, extensions, nullAllowed)
		if e.aborted {
			return 0
		}
		if v := e.tt.Read(key); v != 0 {
			ttMove = entryMove(v)
		}
		e.pvLen[ply] = ply
	}

	/*
		FUTILITY PRUNING
		When material plus a depth margin cannot reach alpha and quiescence
		confirms it, quiet moves that do not give check are skipped. A bare
		king has only quiet moves, so it is never pruned.
	*/
	futile := false
	if !inCheck && !pvNode && depth < len(e.cfg.FutilityMargins) && !isMateScore(alpha) && !isMateScore(beta) &&
		bits.OnesCount64(b.Occupancy(us)) > 1 && b.MaterialValue()+e.cfg.FutilityMargins[depth] <= alpha {
		futile = e.quiescence(b, ply, alpha, alpha+1, 0) <= alpha
		if e.aborted {
			return 0
		}
		e.pvLen[ply] = ply
	}

	f := e.gen.push(ttMove, e.killers.moves[ply], false)
	defer e.gen.pop()

	bestMove, bestScore := pnrmg.NoMove, -Infinity
	bound := BoundAlpha
	legal, pruned := 0, 0
	for m := f.next(e, b); m != pnrmg.NoMove; m = f.next(e, b) {
		quiet := isQuiet(b, m)
		piece := b.PieceAt(m.From())

		u := b.MakeMove(m)
		if b.InCheck(us) {
			b.TakeBack(u)
			continue
		}
		legal++
		givesCheck := b.InCheck(us.Other())

		if futile && quiet && !givesCheck && legal > 1 {
			e.stats.FutilityPrunes++
			pruned++
			b.TakeBack(u)
			continue
		}

		ext := 0
		if extensions < e.cfg.MaxExtensions &&
			(givesCheck || mateThreat || piece.Type() == pnrmg.Pawn && isSeventhRank(m.To(), us)) {
			ext = 1
		}
		newDepth := depth - 1 + ext

		var score int
		if legal == 1 {
			score = -e.alphaBeta(b, newDepth, ply+1, -beta, -alpha, extensions+ext, true)
		} else {
			/*
				LATE MOVE REDUCTIONS
				Late quiet moves are tried shallower with a null window and only
				searched properly when they surprise.
			*/
			reduction := 0
			if quiet && ext == 0 && !inCheck && !givesCheck && depth >= e.cfg.LMRMinDepth &&
				legal > e.cfg.LMRMoveThreshold && !e.killers.isKiller(m, ply) {
				reduction = 1
				if depth >= 6 && legal > 2*e.cfg.LMRMoveThreshold {
					reduction = 2
				}
			}
			score = -e.alphaBeta(b, newDepth-reduction, ply+1, -alpha-1, -alpha, extensions+ext, true)
			if reduction > 0 && score > alpha && !e.aborted {
				e.stats.LMRReSearches++
				score = -e.alphaBeta(b, newDepth, ply+1, -alpha-1, -alpha, extensions+ext, true)
			}
			if score > alpha && score < beta && !e.aborted {
				score = -e.alphaBeta(b, newDepth, ply+1, -beta, -alpha, extensions+ext, true)
			}
		}
		b.TakeBack(u)
		if e.aborted {
			return 0
		}

		if score > bestScore {
			bestScore, bestMove = score, m
			if score > alpha {
				alpha = score
				bound = BoundExact
				e.updatePV(ply, m)
				if quiet {
					e.killers.insert(m, ply)
					e.history.credit(piece, m, depth)
				}
				if score >= beta {
					bound = BoundBeta
					e.stats.BetaCutoffs++
					break
				}
			}
		}
	}

	if legal == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return DrawScore
	}
	// Pruned moves are only known to stay at or below alpha.
	if pruned > 0 && bestScore < alpha {
		bestScore = alpha
	}

	e.tt.Set(key, bound, bestMove, depth, scoreToTT(bestScore, ply), e.age)
	return bestScore
}

// repeatsOnHashMove reports whether playing m would create a threefold repetition.
func (e *Engine) repeatsOnHashMove(b *pnrmg.Board, m pnrmg.Move) bool {
	if m == pnrmg.NoMove || !b.IsPseudoLegal(m) {
		return false
	}
	u := b.MakeMove(m)
	repeats := b.RepetitionCount() >= 3
	b.TakeBack(u)
	if repeats {
		e.stats.HiddenRepetition++
	}
	return repeats
}

/*
quiescence resolves captures and queen promotions below the horizon. When
the side to move is in check every evasion is tried instead, up to
maxQuiescenceEvasions times along a line.
*/
func (e *Engine) quiescence(b *pnrmg.Board, ply, alpha, beta, evasions int) int {
	if e.stopped() {
		return 0
	}
	e.stats.QNodes++
	e.pvLen[ply] = ply

	if b.HalfmoveClock() >= 100 || b.RepetitionCount() >= 3 {
		return DrawScore
	}
	if ply >= MaxPly {
		return e.eval.Evaluate(b)
	}

	us := b.SideToMove()
	inCheck := b.InCheck(us) && evasions < maxQuiescenceEvasions
	pvNode := beta-alpha > 1
	key := b.ZobristKey()

	bestScore := -Infinity
	if !inCheck {
		stand := e.eval.Evaluate(b)
		if stand >= beta {
			e.stats.QStandPatCutoffs++
			return stand
		}
		if stand > alpha {
			alpha = stand
		}
		bestScore = stand
	} else {
		evasions++
	}

	ttMove := pnrmg.NoMove
	if v := e.tt.Read(key); v != 0 {
		ttMove = entryMove(v)
		score := scoreFromTT(entryScore(v), ply)
		if !pvNode {
			switch bound := entryBound(v); {
			case bound == BoundExact,
				bound == BoundBeta && score >= beta,
				bound == BoundAlpha && score <= alpha:
				e.stats.TTCutoffs++
				return score
			}
		}
	}

	var killers [2]pnrmg.Move
	if inCheck {
		killers = e.killers.moves[ply]
	}
	f := e.gen.push(ttMove, killers, !inCheck)
	defer e.gen.pop()

	bestMove := pnrmg.NoMove
	bound := BoundAlpha
	legal := 0
	for m := f.next(e, b); m != pnrmg.NoMove; m = f.next(e, b) {
		u := b.MakeMove(m)
		if b.InCheck(us) {
			b.TakeBack(u)
			continue
		}
		legal++
		score := -e.quiescence(b, ply+1, -beta, -alpha, evasions)
		b.TakeBack(u)
		if e.aborted {
			return 0
		}

		if score > bestScore {
			bestScore, bestMove = score, m
			if score > alpha {
				alpha = score
				bound = BoundExact
				e.updatePV(ply, m)
				if score >= beta {
					bound = BoundBeta
					break
				}
			}
		}
	}

	if inCheck && legal == 0 {
		return -MateScore + ply
	}
	e.tt.Set(key, bound, bestMove, 0, scoreToTT(bestScore, ply), e.age)
	return bestScore
}
