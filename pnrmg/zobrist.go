package pnrmg

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

var (
	zobristPiece     [2][7][64]uint64
	zobristCastle    [16]uint64
	zobristEnPassant [9]uint64 // index 0 (no file) stays zero
	zobristSide      uint64
)

// zobristSeed keeps the keys identical across runs so hashes and book keys are stable.
var zobristSeed = [32]byte{
	0x50, 0x4e, 0x52, 0x7a, 0x6f, 0x62, 0x72, 0x69, 0x73, 0x74, 0x2d, 0x6b, 0x65, 0x79, 0x73, 0x2d,
	0x31, 0x9e, 0x37, 0x79, 0xb9, 0x7f, 0x4a, 0x7c, 0x15, 0xf3, 0x9c, 0xc0, 0x60, 0x5c, 0xed, 0xc8,
}

func init() {
	initZobrist()
}

func initZobrist() {
	rng := frand.NewCustom(zobristSeed[:], 1024, 20)
	var buf [8]byte
	next := func() uint64 {
		rng.Read(buf[:])
		return binary.LittleEndian.Uint64(buf[:])
	}
	for c := White; c <= Black; c++ {
		for t := Pawn; t <= King; t++ {
			for sq := 0; sq < 64; sq++ {
				zobristPiece[c][t][sq] = next()
			}
		}
	}
	for cr := 1; cr < 16; cr++ {
		zobristCastle[cr] = next()
	}
	for f := 1; f < 9; f++ {
		zobristEnPassant[f] = next()
	}
	zobristSide = next()
}

// ZobristKey returns the position hash. Castling and en passant are folded
// into the incrementally kept piece/side key on every read.
func (b *Board) ZobristKey() uint64 {
	return b.zobristIncremental ^ zobristCastle[b.state.Castling()] ^ zobristEnPassant[b.state.EPFile()]
}

// ZobristPawn returns the hash of pawn and king placement only.
func (b *Board) ZobristPawn() uint64 { return b.zobristPawn }

// ComputeZobrist recomputes the position hash from scratch.
func (b *Board) ComputeZobrist() uint64 {
	var key uint64
	for i := 0; i < 64; i++ {
		if p := b.squares[Sq64(i)]; p != Empty {
			key ^= zobristPiece[p.Color()][p.Type()][i]
		}
	}
	if b.state.SideToMove() == Black {
		key ^= zobristSide
	}
	return key ^ zobristCastle[b.state.Castling()] ^ zobristEnPassant[b.state.EPFile()]
}

// ComputeZobristPawn recomputes the pawn/king hash from scratch.
func (b *Board) ComputeZobristPawn() uint64 {
	var key uint64
	for i := 0; i < 64; i++ {
		p := b.squares[Sq64(i)]
		if t := p.Type(); t == Pawn || t == King {
			key ^= zobristPiece[p.Color()][t][i]
		}
	}
	return key
}
