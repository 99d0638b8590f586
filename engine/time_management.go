package engine

import (
	"time"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

const (
	minCheckNodes = 64
	maxCheckNodes = 1 << 16
)

// timeHandler tracks the wall clock deadline of a search. The clock is only
// sampled every few thousand nodes: the gap until the next sample is derived
// from the node rate observed since the previous one, aiming at one sample
// per interval.
type timeHandler struct {
	start    time.Time
	deadline time.Time
	timed    bool
	interval time.Duration

	nextCheck uint64
	lastNodes uint64
	lastCheck time.Time
}

func (th *timeHandler) begin(budget time.Duration, interval time.Duration) {
	th.start = time.Now()
	th.timed = budget > 0
	th.deadline = th.start.Add(budget)
	th.interval = interval
	th.nextCheck = minCheckNodes
	th.lastNodes = 0
	th.lastCheck = th.start
}

// expired is called once per node. It reports true once the deadline passed.
func (th *timeHandler) expired(nodes uint64) bool {
	if !th.timed || nodes < th.nextCheck {
		return false
	}
	now := time.Now()
	if !now.Before(th.deadline) {
		return true
	}
	step := uint64(minCheckNodes)
	if dt := now.Sub(th.lastCheck); dt > 0 {
		step = (nodes - th.lastNodes) * uint64(th.interval) / uint64(dt)
	}
	if remaining := th.deadline.Sub(now); remaining < th.interval && th.interval > 0 {
		step = step * uint64(remaining) / uint64(th.interval)
	}
	th.nextCheck = nodes + Clamp(step, minCheckNodes, maxCheckNodes)
	th.lastNodes = nodes
	th.lastCheck = now
	return false
}

func (th *timeHandler) elapsed() time.Duration {
	return time.Since(th.start)
}

// pastSoftLimit reports whether starting another iteration is unlikely to
// finish in time.
func (th *timeHandler) pastSoftLimit() bool {
	return th.timed && th.elapsed() > th.deadline.Sub(th.start)/2
}

// AllocateTime turns UCI clock parameters into a budget for one move. stage
// is the board stage (0 opening .. StageMax endgame). movesToGo of zero means
// sudden death.
func AllocateTime(remaining, increment time.Duration, movesToGo int, stage int) time.Duration {
	const (
		overhead   = 30 * time.Millisecond // reserve for protocol jitter
		minimum    = 5 * time.Millisecond
		panicBelow = time.Second
		maxFrac    = 0.7
		panicFrac  = 0.9
	)
	if remaining <= 0 {
		return minimum
	}

	movesLeft := movesToGo
	if movesLeft <= 0 {
		movesLeft = estimateMovesRemaining(stage)
	}

	var moveTime time.Duration
	switch {
	case increment > 0 && remaining < panicBelow:
		moveTime = time.Duration(float64(increment) * panicFrac)
	case increment > 0:
		moveTime = remaining/time.Duration(movesLeft) + increment
	default:
		moveTime = remaining / time.Duration(movesLeft)
	}

	if ceiling := time.Duration(float64(remaining) * maxFrac); moveTime > ceiling {
		moveTime = ceiling
	}
	if moveTime > remaining-overhead {
		moveTime = remaining - overhead
	}
	return Max(moveTime, minimum)
}

// estimateMovesRemaining interpolates between 45 moves in the opening and 20
// in the endgame.
func estimateMovesRemaining(stage int) int {
	stage = Clamp(stage, 0, pnrmg.StageMax)
	return 45 - stage*25/pnrmg.StageMax
}
