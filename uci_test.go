package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gkoch/PawnsNRoses-sub000/engine"
	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

func runScript(t *testing.T, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	if err := run(ctx, in, &out, zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

// bestMove returns the move of the last bestmove line.
func bestMove(t *testing.T, lines []string) string {
	t.Helper()
	for i := len(lines) - 1; i >= 0; i-- {
		if f := strings.Fields(lines[i]); len(f) == 2 && f[0] == "bestmove" {
			return f[1]
		}
	}
	t.Fatalf("no bestmove in %q", lines)
	return ""
}

func TestHandshake(t *testing.T) {
	lines := runScript(t, "uci", "isready", "quit")
	if lines[0] != "id name "+engineName {
		t.Fatalf("first line %q", lines[0])
	}
	if lines[len(lines)-2] != "uciok" || lines[len(lines)-1] != "readyok" {
		t.Fatalf("handshake ended with %q", lines[len(lines)-2:])
	}
}

func TestGoDepthReportsAndAnswers(t *testing.T) {
	lines := runScript(t,
		"setoption name OwnBook value false",
		"position startpos moves e2e4 e7e5 g1f3",
		"go depth 3",
	)
	var depths int
	for _, l := range lines {
		if strings.HasPrefix(l, "info depth ") {
			depths++
			if !strings.Contains(l, " score cp ") || !strings.Contains(l, " pv ") {
				t.Fatalf("malformed info line %q", l)
			}
		}
	}
	if depths != 3 {
		t.Fatalf("%d info lines, want 3: %q", depths, lines)
	}
	b := pnrmg.NewBoard()
	for _, s := range []string{"e2e4", "e7e5", "g1f3"} {
		m, _ := b.ParseMove(s)
		b.MakeMove(m)
	}
	if _, err := b.ParseMove(bestMove(t, lines)); err != nil {
		t.Fatalf("bestmove is not legal: %v", err)
	}
}

func TestStopAnswersInfiniteSearch(t *testing.T) {
	lines := runScript(t, "position fen 7k/8/8/8/8/8/8/R5K1 w - - 0 1", "go infinite", "stop", "quit")
	b, _ := pnrmg.ParseFEN("7k/8/8/8/8/8/8/R5K1 w - - 0 1")
	if _, err := b.ParseMove(bestMove(t, lines)); err != nil {
		t.Fatalf("bestmove after stop is not legal: %v", err)
	}
}

func TestGoWithoutLegalMoves(t *testing.T) {
	lines := runScript(t, "position fen R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", "go depth 2")
	if got := bestMove(t, lines); got != "0000" {
		t.Fatalf("checkmated side answered %s", got)
	}
}

func TestOwnBookAnswersFromBook(t *testing.T) {
	lines := runScript(t, "position startpos", "go depth 1")
	switch got := bestMove(t, lines); got {
	case "e2e4", "d2d4", "c2c4", "g1f3":
	default:
		t.Fatalf("opening move %s is not in the built-in book", got)
	}
}

func TestMalformedCommandsReportErrors(t *testing.T) {
	lines := runScript(t,
		"position fen not-a-fen",
		"position startpos moves e2e5",
		"setoption name Hash value many",
		"setoption name Colour value blue",
		"frobnicate",
	)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want one error per command: %q", len(lines), lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "info string ") {
			t.Fatalf("unexpected output %q", l)
		}
	}
}

func TestParseGoBudget(t *testing.T) {
	b := pnrmg.NewBoard()
	p, err := parseGo(strings.Fields("wtime 60000 btime 1000 winc 0 binc 0 movestogo 10"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := p.budget(b); got != 6*time.Second {
		t.Fatalf("white budget %v", got)
	}
	p, _ = parseGo(strings.Fields("movetime 250 wtime 60000"))
	if got := p.budget(b); got != 250*time.Millisecond {
		t.Fatalf("movetime budget %v", got)
	}
	p, _ = parseGo(strings.Fields("depth 5"))
	if got := p.budget(b); got != 0 || p.depth != 5 {
		t.Fatalf("depth-only search got budget %v depth %d", got, p.depth)
	}
	if _, err := parseGo(strings.Fields("wtime soon")); err == nil {
		t.Fatalf("bad wtime accepted")
	}
}

func TestScoreString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{35, "cp 35"},
		{-120, "cp -120"},
		{engine.MateScore - 1, "mate 1"},
		{engine.MateScore - 4, "mate 2"},
		{-engine.MateScore + 2, "mate -1"},
		{-engine.MateScore + 3, "mate -2"},
	}
	for _, tc := range tests {
		if got := scoreString(tc.score); got != tc.want {
			t.Fatalf("scoreString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
