package eval

import (
	"math/bits"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// MaxEval bounds every static score. It stays far below the search's mate
// range so that a static score is never mistaken for a mate.
const MaxEval = 20000

// Config holds the evaluation weights and cache sizes.
type Config struct {
	CacheBits     int // log2 of the position cache entries
	PawnCacheBits int // log2 of the pawn cache entries

	Tempo       int
	DrawDivider int

	BishopPairMG, BishopPairEG int
	IsolatedMG, IsolatedEG     int
	DoubledMG, DoubledEG       int
	KingPawnShieldMG           int
	RookOpenMG, RookSemiOpenMG int
	RookSeventhEG              int
	MopUp                      bool
}

func DefaultConfig() Config {
	return Config{
		CacheBits:        16,
		PawnCacheBits:    14,
		Tempo:            10,
		DrawDivider:      8,
		BishopPairMG:     10,
		BishopPairEG:     50,
		IsolatedMG:       6,
		IsolatedEG:       7,
		DoubledMG:        4,
		DoubledEG:        17,
		KingPawnShieldMG: 6,
		RookOpenMG:       30,
		RookSemiOpenMG:   13,
		RookSeventhEG:    10,
		MopUp:            true,
	}
}

type cacheEntry struct {
	key   uint64
	score int32
	used  bool
}

type pawnEntry struct {
	key    uint64
	mg, eg int32
	files  [2]uint8 // files holding at least one pawn of the side
	used   bool
}

// Evaluator scores positions from the side to move's point of view. It is
// not safe for concurrent use.
type Evaluator struct {
	cfg      Config
	cache    []cacheEntry
	pawns    []pawnEntry
	cacheMsk uint64
	pawnMsk  uint64

	Probes, Hits, PawnHits uint64
}

func New(cfg Config) *Evaluator {
	cfg.CacheBits = max(cfg.CacheBits, 1)
	cfg.PawnCacheBits = max(cfg.PawnCacheBits, 1)
	cfg.DrawDivider = max(cfg.DrawDivider, 1)
	return &Evaluator{
		cfg:      cfg,
		cache:    make([]cacheEntry, 1<<cfg.CacheBits),
		pawns:    make([]pawnEntry, 1<<cfg.PawnCacheBits),
		cacheMsk: 1<<cfg.CacheBits - 1,
		pawnMsk:  1<<cfg.PawnCacheBits - 1,
	}
}

// Clear empties both caches.
func (e *Evaluator) Clear() {
	clear(e.cache)
	clear(e.pawns)
	e.Probes, e.Hits, e.PawnHits = 0, 0, 0
}

// Evaluate returns the static score of b for the side to move.
func (e *Evaluator) Evaluate(b *pnrmg.Board) int {
	if b.HalfmoveClock() >= 100 || insufficientMaterial(b) {
		return 0
	}
	key := b.ZobristKey()
	slot := &e.cache[key&e.cacheMsk]
	e.Probes++
	if slot.used && slot.key == key {
		e.Hits++
		return int(slot.score)
	}
	score := e.evaluate(b)
	*slot = cacheEntry{key: key, score: int32(score), used: true}
	return score
}

func (e *Evaluator) evaluate(b *pnrmg.Board) int {
	var mg, eg int
	pawns := e.pawnStructure(b)
	mg += int(pawns.mg)
	eg += int(pawns.eg)

	for c := pnrmg.White; c <= pnrmg.Black; c++ {
		s := sign(c)
		for t := pnrmg.Pawn; t <= pnrmg.King; t++ {
			for _, sq := range b.PieceSquares(c, t) {
				i := relative(sq, c)
				mg += s * (pieceValueMG[t] + psqtMG[t][i])
				eg += s * (pieceValueEG[t] + psqtEG[t][i])
				if t == pnrmg.Pawn || t == pnrmg.King {
					continue
				}
				n := mobility(b, sq, t, c)
				mg += s * n * mobilityMG[t]
				eg += s * n * mobilityEG[t]
			}
		}
		if b.PieceCount(c, pnrmg.Bishop) >= 2 {
			mg += s * e.cfg.BishopPairMG
			eg += s * e.cfg.BishopPairEG
		}
		for _, sq := range b.PieceSquares(c, pnrmg.Rook) {
			file := uint8(1) << sq.File()
			switch {
			case (pawns.files[0]|pawns.files[1])&file == 0:
				mg += s * e.cfg.RookOpenMG
			case pawns.files[c]&file == 0:
				mg += s * e.cfg.RookSemiOpenMG
			}
			if relative(sq, c)>>3 == 6 {
				eg += s * e.cfg.RookSeventhEG
			}
		}
	}

	if e.cfg.MopUp {
		eg += mopUp(b)
	}
	if b.SideToMove() == pnrmg.White {
		mg += e.cfg.Tempo
		eg += e.cfg.Tempo
	} else {
		mg -= e.cfg.Tempo
		eg -= e.cfg.Tempo
	}

	stage := b.Stage()
	score := (mg*(pnrmg.StageMax-stage) + eg*stage) / pnrmg.StageMax
	if theoreticalDraw(b) {
		score /= e.cfg.DrawDivider
	}
	if b.SideToMove() == pnrmg.Black {
		score = -score
	}
	return min(max(score, -MaxEval), MaxEval)
}

// pawnStructure scores doubled, isolated and passed pawns and the king's
// pawn shield, White relative. Results are cached by the pawn/king hash.
func (e *Evaluator) pawnStructure(b *pnrmg.Board) *pawnEntry {
	key := b.ZobristPawn()
	p := &e.pawns[key&e.pawnMsk]
	if p.used && p.key == key {
		e.PawnHits++
		return p
	}
	*p = pawnEntry{key: key, used: true}

	var pawns [2]uint64
	for c := pnrmg.White; c <= pnrmg.Black; c++ {
		for _, sq := range b.PieceSquares(c, pnrmg.Pawn) {
			pawns[c] |= sq.Bit()
			p.files[c] |= 1 << sq.File()
		}
	}

	var mg, eg int
	for c := pnrmg.White; c <= pnrmg.Black; c++ {
		s := sign(c)
		own, their := pawns[c], pawns[c.Other()]
		for _, sq := range b.PieceSquares(c, pnrmg.Pawn) {
			i := sq.To64()
			f := i & 7
			if own&adjacentFiles[f] == 0 {
				mg -= s * e.cfg.IsolatedMG
				eg -= s * e.cfg.IsolatedEG
			}
			front := passedMask[c][i]
			if their&front == 0 && own&front&fileMask[f] == 0 {
				r := relative(sq, c)
				mg += s * passedMG[r]
				eg += s * passedEG[r]
			}
		}
		for f := 0; f < 8; f++ {
			if n := bits.OnesCount64(own & fileMask[f]); n > 1 {
				mg -= s * (n - 1) * e.cfg.DoubledMG
				eg -= s * (n - 1) * e.cfg.DoubledEG
			}
		}
		if k := b.KingSquare(c); k != pnrmg.NoSquare {
			shield := min(bits.OnesCount64(own&kingRing[k.To64()]), 3)
			mg += s * shield * e.cfg.KingPawnShieldMG
		}
	}
	p.mg, p.eg = int32(mg), int32(eg)
	return p
}

// PositionalGain estimates how much m improves the mover's piece-square
// score in the current game stage.
func (e *Evaluator) PositionalGain(b *pnrmg.Board, m pnrmg.Move) int {
	return PieceSquareGain(b.PieceAt(m.From()), m.From(), m.To(), b.Stage())
}

// PieceSquareGain returns the tapered piece-square difference of moving p
// from one square to another, from p's side.
func PieceSquareGain(p pnrmg.Piece, from, to pnrmg.Square, stage int) int {
	if p == pnrmg.Empty {
		return 0
	}
	t, c := p.Type(), p.Color()
	f, r := relative(from, c), relative(to, c)
	mg := psqtMG[t][r] - psqtMG[t][f]
	eg := psqtEG[t][r] - psqtEG[t][f]
	return (mg*(pnrmg.StageMax-stage) + eg*stage) / pnrmg.StageMax
}

var (
	knightSteps = []pnrmg.Square{33, 31, 18, 14, -14, -18, -31, -33}
	bishopDirs  = []pnrmg.Square{17, 15, -15, -17}
	rookDirs    = []pnrmg.Square{16, 1, -1, -16}
	queenDirs   = []pnrmg.Square{17, 16, 15, 1, -1, -15, -16, -17}
)

// mobility counts the squares a piece reaches that do not hold a friendly piece.
func mobility(b *pnrmg.Board, from pnrmg.Square, t pnrmg.PieceType, c pnrmg.Color) int {
	own := b.Occupancy(c)
	n := 0
	if t == pnrmg.Knight {
		for _, d := range knightSteps {
			if to := from + d; to.OnBoard() && own&to.Bit() == 0 {
				n++
			}
		}
		return n
	}
	dirs := queenDirs
	switch t {
	case pnrmg.Bishop:
		dirs = bishopDirs
	case pnrmg.Rook:
		dirs = rookDirs
	}
	for _, d := range dirs {
		for to := from + d; to.OnBoard(); to += d {
			p := b.PieceAt(to)
			if p != pnrmg.Empty && p.Color() == c {
				break
			}
			n++
			if p != pnrmg.Empty {
				break
			}
		}
	}
	return n
}

// insufficientMaterial reports positions where neither side can mate: bare
// kings, a single minor piece, or two knights against a bare king.
func insufficientMaterial(b *pnrmg.Board) bool {
	var minors, knights [2]int
	for c := pnrmg.White; c <= pnrmg.Black; c++ {
		if b.PieceCount(c, pnrmg.Pawn)+b.PieceCount(c, pnrmg.Rook)+b.PieceCount(c, pnrmg.Queen) > 0 {
			return false
		}
		knights[c] = b.PieceCount(c, pnrmg.Knight)
		minors[c] = knights[c] + b.PieceCount(c, pnrmg.Bishop)
	}
	switch {
	case minors[0]+minors[1] <= 1:
		return true
	case minors[1] == 0 && knights[0] == 2 && minors[0] == 2:
		return true
	case minors[0] == 0 && knights[1] == 2 && minors[1] == 2:
		return true
	}
	return false
}

// theoreticalDraw reports pawnless endings that are usually drawn even though
// mate is still possible: minor against minor, rook against a rook or minor,
// and queen against queen.
func theoreticalDraw(b *pnrmg.Board) bool {
	var n, r, q [2]int
	for c := pnrmg.White; c <= pnrmg.Black; c++ {
		if b.PieceCount(c, pnrmg.Pawn) > 0 {
			return false
		}
		n[c] = b.PieceCount(c, pnrmg.Knight) + b.PieceCount(c, pnrmg.Bishop)
		r[c] = b.PieceCount(c, pnrmg.Rook)
		q[c] = b.PieceCount(c, pnrmg.Queen)
	}
	if n[0]+n[1]+r[0]+r[1]+q[0]+q[1] != 2 {
		return false
	}
	switch {
	case n[0] == 1 && n[1] == 1:
		return true
	case r[0] == 1 && (r[1] == 1 || n[1] == 1):
		return true
	case r[1] == 1 && n[0] == 1:
		return true
	case q[0] == 1 && q[1] == 1:
		return true
	}
	return false
}

// mopUp drives the lone king to the edge and brings the winning king closer
// when one side has only its king left and no pawns remain. White relative.
func mopUp(b *pnrmg.Board) int {
	if b.PieceCount(pnrmg.White, pnrmg.Pawn)+b.PieceCount(pnrmg.Black, pnrmg.Pawn) > 0 {
		return 0
	}
	strong := pnrmg.White
	switch {
	case b.HasNonPawnMaterial(pnrmg.White) && !b.HasNonPawnMaterial(pnrmg.Black):
	case b.HasNonPawnMaterial(pnrmg.Black) && !b.HasNonPawnMaterial(pnrmg.White):
		strong = pnrmg.Black
	default:
		return 0
	}
	ks, kw := b.KingSquare(strong), b.KingSquare(strong.Other())
	if ks == pnrmg.NoSquare || kw == pnrmg.NoSquare {
		return 0
	}
	closeWeight, edgeWeight := 12, 12
	hasQueen := b.PieceCount(strong, pnrmg.Queen) > 0
	hasRook := b.PieceCount(strong, pnrmg.Rook) > 0
	if hasQueen && !hasRook {
		closeWeight = 10
	} else if hasRook && !hasQueen {
		closeWeight, edgeWeight = 18, 20
	}
	bonus := (7-kingDistance(ks, kw))*closeWeight + (3-edgeDistance(kw))*edgeWeight
	bonus = min(max(bonus, 0), 120)
	if strong == pnrmg.Black {
		return -bonus
	}
	return bonus
}

func kingDistance(a, b pnrmg.Square) int {
	return max(abs(a.File()-b.File()), abs(a.Rank()-b.Rank()))
}

func edgeDistance(sq pnrmg.Square) int {
	f, r := sq.File(), sq.Rank()
	return min(f, 7-f, r, 7-r)
}

func relative(sq pnrmg.Square, c pnrmg.Color) int {
	if c == pnrmg.Black {
		return mirror(sq.To64())
	}
	return sq.To64()
}

func sign(c pnrmg.Color) int {
	if c == pnrmg.White {
		return 1
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
