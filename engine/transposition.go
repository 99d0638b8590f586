package engine

import (
	"math/bits"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// Bound kinds stored in the low bits of an entry's value word. Zero is never
// stored, so a zero value word marks an empty slot.
const (
	BoundAlpha uint8 = 1 // score is an upper bound (failed low)
	BoundBeta  uint8 = 2 // score is a lower bound (failed high)
	BoundExact uint8 = 3
)

const (
	segmentWords = 1 << 16 // uint64 words per segment, two per slot
	maxProbe     = 8       // slots inspected per probe

	ageBits = 12
	ageMask = 1<<ageBits - 1

	valueMoveShift  = 2
	valueDepthShift = valueMoveShift + 17
	valueScoreShift = valueDepthShift + 8
	scoreOffset     = 1 << 15
)

// TransTable is a fixed-size cache from position hash to search result. The
// key space is sharded across segments picked by the high hash bits; within a
// segment, slots are pairs of words probed linearly from the home slot.
//
// Key word: hash with its low ageBits replaced by the search age.
// Value word: bound (2) | move (17) | depth (8) | score+offset (16).
//
// A TransTable is not safe for concurrent use.
type TransTable struct {
	segments    [][]uint64
	segmentBits uint
}

// NewTransTable allocates a table of roughly sizeMB megabytes, rounded down
// to a power-of-two number of segments (at least one).
func NewTransTable(sizeMB int) *TransTable {
	words := uint64(sizeMB) << 20 / 8
	n := words / segmentWords
	if n == 0 {
		n = 1
	}
	segBits := uint(bits.Len64(n) - 1)
	tt := &TransTable{
		segments:    make([][]uint64, 1<<segBits),
		segmentBits: segBits,
	}
	for i := range tt.segments {
		tt.segments[i] = make([]uint64, segmentWords)
	}
	return tt
}

// Clear empties every slot.
func (tt *TransTable) Clear() {
	for _, seg := range tt.segments {
		for i := range seg {
			seg[i] = 0
		}
	}
}

func (tt *TransTable) locate(hash uint64) ([]uint64, int) {
	var seg []uint64
	if tt.segmentBits == 0 {
		seg = tt.segments[0]
	} else {
		seg = tt.segments[hash>>(64-tt.segmentBits)]
	}
	return seg, int(hash%segmentWords) &^ 1
}

// Read returns the packed value word stored for hash, or 0 when absent.
func (tt *TransTable) Read(hash uint64) uint64 {
	seg, i := tt.locate(hash)
	key := hash &^ ageMask
	for k := 0; k < maxProbe; k++ {
		v := seg[i+1]
		if v == 0 {
			return 0
		}
		if seg[i]&^ageMask == key {
			return v
		}
		i = (i + 2) % segmentWords
	}
	return 0
}

// Set stores a result. A matching entry is overwritten only by a search at
// least as deep, or by an exact result at most two plies shallower replacing
// a bound. Otherwise the first empty slot is used, and a full probe window
// evicts the slot with the lowest effective age (age*3 for exact entries,
// age*2 for bounds).
func (tt *TransTable) Set(hash uint64, bound uint8, move pnrmg.Move, depth int, score int, age uint16) {
	seg, i := tt.locate(hash)
	key := hash&^ageMask | uint64(age)&ageMask
	value := packValue(bound, move, depth, score)

	victim := -1
	victimAge := int(^uint(0) >> 1)
	for k := 0; k < maxProbe; k++ {
		v := seg[i+1]
		if v == 0 {
			seg[i], seg[i+1] = key, value
			return
		}
		if seg[i]&^ageMask == hash&^ageMask {
			oldDepth := entryDepth(v)
			if depth >= oldDepth ||
				depth >= oldDepth-2 && bound == BoundExact && entryBound(v) != BoundExact {
				seg[i+1] = value
			}
			seg[i] = key
			return
		}
		eff := int(seg[i] & ageMask)
		if entryBound(v) == BoundExact {
			eff *= 3
		} else {
			eff *= 2
		}
		if eff < victimAge {
			victim, victimAge = i, eff
		}
		i = (i + 2) % segmentWords
	}
	seg[victim], seg[victim+1] = key, value
}

func packValue(bound uint8, move pnrmg.Move, depth int, score int) uint64 {
	if depth < 0 {
		depth = 0
	} else if depth > 255 {
		depth = 255
	}
	return uint64(bound)&3 |
		uint64(move&(1<<17-1))<<valueMoveShift |
		uint64(depth)<<valueDepthShift |
		uint64(score+scoreOffset)&0xFFFF<<valueScoreShift
}

func entryBound(v uint64) uint8 { return uint8(v & 3) }
func entryMove(v uint64) pnrmg.Move { return pnrmg.Move(v>>valueMoveShift) & (1<<17 - 1) }
func entryDepth(v uint64) int { return int(v >> valueDepthShift & 0xFF) }
func entryScore(v uint64) int { return int(v>>valueScoreShift&0xFFFF) - scoreOffset }

// scoreToTT converts a root-relative mate score into a node-relative one.
func scoreToTT(score, ply int) int {
	switch {
	case score >= MateThreshold:
		return score + ply
	case score <= -MateThreshold:
		return score - ply
	}
	return score
}

// scoreFromTT is the inverse of scoreToTT.
func scoreFromTT(score, ply int) int {
	switch {
	case score >= MateThreshold:
		return score - ply
	case score <= -MateThreshold:
		return score + ply
	}
	return score
}
