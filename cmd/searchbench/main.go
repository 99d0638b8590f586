package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/gkoch/PawnsNRoses-sub000/engine"
	"github.com/gkoch/PawnsNRoses-sub000/eval"
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func main() {
	depthFlag := flag.Int("depth", 10, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	hashFlag := flag.Int("hash", engine.DefaultConfig().HashMB, "transposition table size in MB")
	verbose := flag.Bool("v", false, "log search statistics")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fen := pnrmg.FENStartPos
	if *fenFlag != "" {
		fen = *fenFlag
	}
	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d\n", fen, *depthFlag, *repeatFlag)

	cfg := engine.DefaultConfig()
	cfg.HashMB = *hashFlag
	e := engine.New(cfg, eval.New(eval.DefaultConfig()),
		engine.WithLogger(log),
		engine.WithListener(engine.ListenerFunc(func(info engine.Info) {
			fmt.Printf("  depth %2d score %6d nodes %10d time %v\n", info.Depth, info.Score, info.Nodes, info.Elapsed.Round(time.Millisecond))
		})),
	)

	var nodes uint64
	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		board, err := pnrmg.ParseFEN(fen)
		if err != nil {
			log.Fatal().Err(err).Str("fen", fen).Msg("parse-fen")
		}
		e.NewGame()

		iterStart := time.Now()
		bestMove, score := e.Search(board, *depthFlag, 0)
		iterElapsed := time.Since(iterStart)
		stats := e.Stats()
		nodes += stats.Nodes
		fmt.Printf("iteration %d: bestmove %v score %d time=%v\n", i+1, bestMove, score, iterElapsed)
		log.Debug().Object("stats", stats).Msg("iteration")
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v nodes: %d nps: %.0f\n", totalElapsed, nodes, float64(nodes)/totalElapsed.Seconds())

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
