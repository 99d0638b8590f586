package engine

import "time"

// Config holds the tunables of one Engine. It is read at construction and
// never mutated by the search.
type Config struct {
	// HashMB is the transposition table size in megabytes.
	HashMB int

	// AspirationWindow is the half width of the first window tried around
	// the previous iteration's score.
	AspirationWindow int

	NullMoveMinDepth  int
	NullMoveReduction int

	// IIDMinDepth is the remaining depth from which a node without a hash
	// move runs a shallower search first to find one.
	IIDMinDepth  int
	IIDReduction int

	// RazorMargins and FutilityMargins are indexed by remaining depth.
	RazorMargins    [4]int
	FutilityMargins [4]int

	LMRMinDepth      int
	LMRMoveThreshold int

	// MaxExtensions caps the plies added along one path.
	MaxExtensions int

	// HistoryBits is the width history scores are shifted into for ordering.
	HistoryBits int

	// OrderingNoise bounds the random perturbation added to quiet move scores.
	// Zero disables it.
	OrderingNoise int
	Seed          uint64

	// TimeCheckInterval is the target wall time between two clock samples.
	TimeCheckInterval time.Duration
}

// DefaultConfig returns the tunables the engine plays with.
func DefaultConfig() Config {
	return Config{
		HashMB:            64,
		AspirationWindow:  50,
		NullMoveMinDepth:  2,
		NullMoveReduction: 2,
		IIDMinDepth:       5,
		IIDReduction:      2,
		RazorMargins:      [4]int{0, 300, 500, 900},
		FutilityMargins:   [4]int{0, 200, 450, 900},
		LMRMinDepth:       3,
		LMRMoveThreshold:  4,
		MaxExtensions:     12,
		HistoryBits:       14,
		OrderingNoise:     8,
		Seed:              0x9E3779B97F4A7C15,
		TimeCheckInterval: 5 * time.Millisecond,
	}
}
