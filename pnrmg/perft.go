package pnrmg

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (b *Board) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	buffers := make([][]Move, depth+1)
	for i := range buffers {
		buffers[i] = make([]Move, 0, 256)
	}
	return b.perft(depth, buffers)
}

func (b *Board) perft(depth int, buffers [][]Move) uint64 {
	moves := b.GenerateAll(buffers[depth][:0])
	us := b.SideToMove()
	var nodes uint64
	for _, m := range moves {
		u := b.MakeMove(m)
		if !b.InCheck(us) {
			if depth == 1 {
				nodes++
			} else {
				nodes += b.perft(depth-1, buffers)
			}
		}
		b.TakeBack(u)
	}
	buffers[depth] = moves[:0]
	return nodes
}

// PerftDivide returns the perft count below each legal root move.
func (b *Board) PerftDivide(depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range b.LegalMoves() {
		u := b.MakeMove(m)
		out[m] = b.Perft(depth - 1)
		b.TakeBack(u)
	}
	return out
}
