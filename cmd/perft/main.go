package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"slices"
	"strings"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func main() {
	fen := flag.String("fen", pnrmg.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "With -divide, compare every root move against dragontoothmg")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *depth <= 0 {
		log.Error().Int("depth", *depth).Msg("-depth must be > 0")
		os.Exit(2)
	}

	board, err := pnrmg.ParseFEN(*fen)
	if err != nil {
		log.Error().Err(err).Str("fen", *fen).Msg("parse-fen")
		os.Exit(2)
	}

	if *divide {
		div := board.PerftDivide(*depth)
		moves := maps.Keys(div)
		slices.SortFunc(moves, func(a, b pnrmg.Move) int { return strings.Compare(a.String(), b.String()) })
		var sum uint64
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
			sum += div[m]
		}
		fmt.Printf("Total: %d\n", sum)
		if *verify {
			if bad := verifyDivide(*fen, *depth, div); bad > 0 {
				log.Error().Int("mismatches", bad).Msg("verify")
				os.Exit(1)
			}
			log.Info().Int("moves", len(div)).Msg("verify-ok")
		}
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Error().Err(err).Msg("create-cpuprofile")
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Err(err).Msg("start-cpuprofile")
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += board.Perft(*depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			log.Error().Err(err).Msg("create-memprofile")
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Error().Err(err).Msg("write-memprofile")
			os.Exit(2)
		}
		_ = f.Close()
	}
}

// verifyDivide recounts every root subtree with an independent generator and
// prints the moves whose counts differ. It returns the number of mismatches.
func verifyDivide(fen string, depth int, div map[pnrmg.Move]uint64) int {
	counts := make(map[string]uint64, len(div))
	for m, n := range div {
		counts[m.String()] = n
	}
	ref := dragontoothmg.ParseFen(fen)
	bad := 0
	for _, rm := range ref.GenerateLegalMoves() {
		undo := ref.Apply(rm)
		want := oraclePerft(&ref, depth-1)
		undo()
		got, ok := counts[rm.String()]
		delete(counts, rm.String())
		if !ok || got != want {
			fmt.Printf("mismatch %s: got %d want %d\n", rm.String(), got, want)
			bad++
		}
	}
	for s, n := range counts {
		fmt.Printf("mismatch %s: got %d, not a legal move\n", s, n)
		bad++
	}
	return bad
}

func oraclePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += oraclePerft(b, depth-1)
		undo()
	}
	return n
}
