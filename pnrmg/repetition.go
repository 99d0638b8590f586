package pnrmg

const (
	repetitionBits = 12
	repetitionSize = 1 << repetitionBits
	repetitionMask = repetitionSize - 1
)

// RepetitionTable counts occurrences of position hashes along the current
// game and search path. It uses linear probing with backward-shift deletion,
// so decrementing in reverse order restores the exact slot layout.
type RepetitionTable struct {
	keys   [repetitionSize]uint64
	counts [repetitionSize]uint8
}

func repetitionHome(key uint64) int { return int(key >> (64 - repetitionBits)) }

// Increment records one more occurrence of key and returns the new count.
func (r *RepetitionTable) Increment(key uint64) int {
	i := repetitionHome(key)
	for r.counts[i] != 0 {
		if r.keys[i] == key {
			r.counts[i]++
			return int(r.counts[i])
		}
		i = (i + 1) & repetitionMask
	}
	r.keys[i] = key
	r.counts[i] = 1
	return 1
}

// Count returns the number of recorded occurrences of key.
func (r *RepetitionTable) Count(key uint64) int {
	i := repetitionHome(key)
	for r.counts[i] != 0 {
		if r.keys[i] == key {
			return int(r.counts[i])
		}
		i = (i + 1) & repetitionMask
	}
	return 0
}

// Decrement removes one occurrence of key. An absent key is ignored.
func (r *RepetitionTable) Decrement(key uint64) {
	i := repetitionHome(key)
	for r.counts[i] != 0 && r.keys[i] != key {
		i = (i + 1) & repetitionMask
	}
	if r.counts[i] == 0 {
		return
	}
	r.counts[i]--
	if r.counts[i] > 0 {
		return
	}
	r.keys[i] = 0
	// Shift later members of the cluster back so probing never crosses a hole.
	j := i
	for {
		j = (j + 1) & repetitionMask
		if r.counts[j] == 0 {
			return
		}
		h := repetitionHome(r.keys[j])
		if (i <= j && i < h && h <= j) || (i > j && (i < h || h <= j)) {
			continue
		}
		r.keys[i], r.counts[i] = r.keys[j], r.counts[j]
		r.keys[j], r.counts[j] = 0, 0
		i = j
	}
}

// Clear forgets every recorded position.
func (r *RepetitionTable) Clear() { *r = RepetitionTable{} }
