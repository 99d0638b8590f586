package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"

	"github.com/gkoch/PawnsNRoses-sub000/book"
	"github.com/gkoch/PawnsNRoses-sub000/engine"
	"github.com/gkoch/PawnsNRoses-sub000/eval"
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

const engineName = "PawnsNRoses 0.3"

func main() {
	level := flag.String("log-level", "warn", "stderr log level (trace, debug, info, warn, error)")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level: %v\n", err)
		os.Exit(2)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Stdin, os.Stdout, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("uci-failed")
		os.Exit(1)
	}
}

// run speaks UCI on in/out until "quit", end of input or ctx is done.
// Searches run in their own goroutine so that "stop" and "isready" are
// answered while the engine thinks.
func run(ctx context.Context, in io.Reader, out io.Writer, log zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	u := newSession(out, log)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		defer u.stopSearch()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line, ok := <-lines:
				if !ok {
					u.waitSearch()
					return nil
				}
				if quit := u.handle(ctx, g, line); quit {
					return nil
				}
			}
		}
	})
	return g.Wait()
}

type session struct {
	mu  sync.Mutex // guards out
	out io.Writer
	log zerolog.Logger

	cfg       engine.Config
	evaluator *eval.Evaluator
	eng       *engine.Engine
	board     *pnrmg.Board

	ownBook  bool
	bookFile string
	book     *book.Book

	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(out io.Writer, log zerolog.Logger) *session {
	u := &session{
		out:       out,
		log:       log,
		cfg:       engine.DefaultConfig(),
		evaluator: eval.New(eval.DefaultConfig()),
		board:     pnrmg.NewBoard(),
		ownBook:   true,
		book:      book.Default(book.WithLogger(log)),
	}
	u.rebuild()
	return u
}

// rebuild creates the engine after a change of hash size or book.
func (u *session) rebuild() {
	opts := []engine.Option{
		engine.WithLogger(u.log),
		engine.WithListener(engine.ListenerFunc(u.report)),
	}
	if u.ownBook && u.book != nil {
		opts = append(opts, engine.WithBook(u.book))
	}
	u.eng = engine.New(u.cfg, u.evaluator, opts...)
}

func (u *session) println(a ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.out, a...)
}

func (u *session) printf(format string, a ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, a...)
}

// handle executes one command line and reports whether the session ends.
func (u *session) handle(ctx context.Context, g *errgroup.Group, line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}
	switch strings.ToLower(tokens[0]) {
	case "uci":
		u.println("id name", engineName)
		u.println("id author gkoch")
		u.printf("option name Hash type spin default %d min 1 max 4096\n", engine.DefaultConfig().HashMB)
		u.println("option name OwnBook type check default true")
		u.println("option name BookFile type string default <empty>")
		u.println("uciok")
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.waitSearch()
		u.board = pnrmg.NewBoard()
		u.eng.NewGame()
	case "position":
		u.waitSearch()
		if err := u.position(tokens[1:]); err != nil {
			u.println("info string", err)
		}
	case "go":
		u.waitSearch()
		u.goSearch(ctx, g, tokens[1:])
	case "stop":
		u.stopSearch()
	case "setoption":
		u.waitSearch()
		if err := u.setOption(tokens[1:]); err != nil {
			u.println("info string", err)
		}
	case "eval":
		u.waitSearch()
		u.printf("info string eval %d\n", u.evaluator.Evaluate(u.board))
	case "perft":
		u.waitSearch()
		u.perft(tokens[1:])
	case "d":
		u.println(u.board.FEN())
	case "quit":
		u.stopSearch()
		return true
	default:
		u.println("info string unknown command:", line)
	}
	return false
}

func (u *session) position(args []string) error {
	if len(args) == 0 {
		return errors.New("malformed position command")
	}
	var b *pnrmg.Board
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		b = pnrmg.NewBoard()
	case "fen":
		end := slices.Index(rest, "moves")
		if end < 0 {
			end = len(rest)
		}
		var err error
		if b, err = pnrmg.ParseFEN(strings.Join(rest[:end], " ")); err != nil {
			return err
		}
		rest = rest[end:]
	default:
		return fmt.Errorf("invalid position subcommand %q", args[0])
	}
	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, text := range rest[1:] {
			m, err := b.ParseMove(text)
			if err != nil {
				return fmt.Errorf("move %s not found for position %s: %w", text, b.FEN(), err)
			}
			b.MakeMove(m)
		}
	}
	u.board = b
	return nil
}

type goParams struct {
	wtime, btime, winc, binc time.Duration
	movetime                 time.Duration
	movesToGo, depth         int
	infinite                 bool
}

func parseGo(args []string) (goParams, error) {
	var p goParams
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i])
		if key == "infinite" {
			p.infinite = true
			continue
		}
		if key == "ponder" {
			continue
		}
		if i+1 >= len(args) {
			return p, fmt.Errorf("malformed go option %s", key)
		}
		i++
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return p, fmt.Errorf("could not convert %s: %w", key, err)
		}
		ms := time.Duration(n) * time.Millisecond
		switch key {
		case "wtime":
			p.wtime = ms
		case "btime":
			p.btime = ms
		case "winc":
			p.winc = ms
		case "binc":
			p.binc = ms
		case "movetime":
			p.movetime = ms
		case "movestogo":
			p.movesToGo = n
		case "depth":
			p.depth = n
		case "nodes", "mate":
		default:
			return p, fmt.Errorf("unknown go subcommand %s", key)
		}
	}
	return p, nil
}

// budget turns the clock into a time budget for the side to move. Zero means
// the search is bounded only by depth or a stop command.
func (p goParams) budget(b *pnrmg.Board) time.Duration {
	if p.infinite {
		return 0
	}
	if p.movetime > 0 {
		return p.movetime
	}
	remaining, inc := p.wtime, p.winc
	if b.SideToMove() == pnrmg.Black {
		remaining, inc = p.btime, p.binc
	}
	if remaining <= 0 {
		return 0
	}
	return engine.AllocateTime(remaining, inc, p.movesToGo, b.Stage())
}

func (u *session) goSearch(ctx context.Context, g *errgroup.Group, args []string) {
	p, err := parseGo(args)
	if err != nil {
		u.println("info string", err)
	}
	budget := p.budget(u.board)
	b := *u.board
	u.log.Debug().Int("depth", p.depth).Dur("budget", budget).Str("fen", b.FEN()).Msg("go")

	searchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	u.cancel, u.done = cancel, done
	g.Go(func() error {
		defer close(done)
		defer cancel()
		move, _ := u.eng.SearchContext(searchCtx, &b, p.depth, budget)
		if move == pnrmg.NoMove {
			if legal := b.LegalMoves(); len(legal) > 0 {
				u.log.Warn().Msg("no move resolved, playing the first legal move")
				move = legal[0]
			}
		}
		if move == pnrmg.NoMove {
			u.println("bestmove 0000")
			return nil
		}
		u.println("bestmove", move)
		return nil
	})
}

// stopSearch cancels the running search and waits for its bestmove.
func (u *session) stopSearch() {
	if u.cancel != nil {
		u.cancel()
	}
	u.waitSearch()
}

func (u *session) waitSearch() {
	if u.done != nil {
		<-u.done
		u.cancel, u.done = nil, nil
	}
}

func (u *session) report(info engine.Info) {
	ms := info.Elapsed.Milliseconds()
	nps := uint64(0)
	if ms > 0 {
		nps = info.Nodes * 1000 / uint64(ms)
	}
	pv := strings.Join(lo.Map(info.PV, func(m pnrmg.Move, _ int) string { return m.String() }), " ")
	u.printf("info depth %d score %s nodes %d nps %d time %d pv %s\n",
		info.Depth, scoreString(info.Score), info.Nodes, nps, ms, pv)
}

// scoreString formats a search score as a UCI "cp" or "mate" score.
func scoreString(score int) string {
	switch {
	case score >= engine.MateThreshold:
		return fmt.Sprintf("mate %d", (engine.MateScore-score+1)/2)
	case score <= -engine.MateThreshold:
		return fmt.Sprintf("mate %d", -(engine.MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

func (u *session) setOption(args []string) error {
	// setoption name <id> [value <x>]
	nameAt := slices.Index(args, "name")
	valueAt := slices.Index(args, "value")
	if nameAt < 0 {
		return errors.New("malformed setoption command")
	}
	end := len(args)
	value := ""
	if valueAt > nameAt {
		end = valueAt
		value = strings.Join(args[valueAt+1:], " ")
	}
	name := strings.ToLower(strings.Join(args[nameAt+1:end], " "))

	switch name {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			return fmt.Errorf("bad Hash value %q", value)
		}
		u.cfg.HashMB = mb
	case "ownbook":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("bad OwnBook value %q", value)
		}
		u.ownBook = on
	case "bookfile":
		if value == "" || value == "<empty>" {
			u.bookFile, u.book = "", book.Default(book.WithLogger(u.log))
			break
		}
		bk, err := book.Load(value, book.DefaultMaxPly, book.WithLogger(u.log))
		if err != nil {
			return err
		}
		u.bookFile, u.book = value, bk
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	u.log.Info().Str("name", name).Str("value", value).Msg("setoption")
	u.rebuild()
	return nil
}

func (u *session) perft(args []string) {
	depth := 1
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}
	start := time.Now()
	div := u.board.PerftDivide(depth)
	moves := maps.Keys(div)
	slices.SortFunc(moves, func(a, b pnrmg.Move) int { return strings.Compare(a.String(), b.String()) })
	var total uint64
	for _, m := range moves {
		u.printf("%s: %d\n", m, div[m])
		total += div[m]
	}
	u.printf("\nNodes searched: %d (%v)\n", total, time.Since(start).Round(time.Millisecond))
}
