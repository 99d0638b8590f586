// Package book reads opening lines and answers which moves were played from
// a position.
//
// A book file is CSV with three columns per line: ECO code, opening name and
// the moves in SAN with move numbers ("1.e4 e5 2.Nf3 Nc6"). Coordinate moves
// are accepted as well. Lines starting with '#' are ignored. Every line that
// passes through a position adds one to the weight of the move it plays there.
package book

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/gkoch/PawnsNRoses-sub000/pnrmg"
)

// DefaultMaxPly is how deep lines are indexed unless the caller asks otherwise.
const DefaultMaxPly = 16

//go:embed openings.csv
var defaultLines string

var moveNumbers = regexp.MustCompile(`[0-9]+\.(\.\.)?`)

// Candidate is a book move and how many lines play it.
type Candidate struct {
	Move   pnrmg.Move
	Weight int
}

// Book maps Zobrist keys to the candidate moves of a position. It is
// read-only once loaded.
type Book struct {
	entries map[uint64][]Candidate
	lines   int
	log     zerolog.Logger
}

type Option func(*Book)

// WithLogger reports skipped and accepted lines at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(bk *Book) { bk.log = log }
}

// Default returns the book compiled into the binary.
func Default(opts ...Option) *Book {
	bk, err := Parse(strings.NewReader(defaultLines), DefaultMaxPly, opts...)
	if err != nil {
		panic(fmt.Sprintf("book: built-in openings: %v", err))
	}
	return bk
}

// Load reads a book file from disk.
func Load(path string, maxPly int, opts ...Option) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer f.Close()
	return Parse(f, maxPly, opts...)
}

// Parse reads book lines from r, indexing at most maxPly moves of each.
func Parse(r io.Reader, maxPly int, opts ...Option) (*Book, error) {
	bk := &Book{entries: make(map[uint64][]Candidate), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(bk)
	}

	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read book: %w", err)
		}
		if len(record) < 3 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("book line %d: want eco,name,moves, got %d fields", line, len(record))
		}
		if err := bk.addLine(record[2], maxPly); err != nil {
			line, _ := reader.FieldPos(2)
			return nil, fmt.Errorf("book line %d (%s): %w", line, record[1], err)
		}
		bk.lines++
	}
	bk.log.Debug().Int("lines", bk.lines).Int("positions", len(bk.entries)).Msg("book-loaded")
	return bk, nil
}

func (bk *Book) addLine(text string, maxPly int) error {
	b := pnrmg.NewBoard()
	tokens := strings.Fields(moveNumbers.ReplaceAllString(text, " "))
	for ply, tok := range tokens {
		if ply >= maxPly {
			break
		}
		m, err := b.ParseSAN(tok)
		if err != nil {
			if m, err = b.ParseMove(tok); err != nil {
				return fmt.Errorf("move %d %q: %w", ply+1, tok, err)
			}
		}
		bk.add(b.ZobristKey(), m)
		b.MakeMove(m)
	}
	return nil
}

func (bk *Book) add(key uint64, m pnrmg.Move) {
	cands := bk.entries[key]
	for i := range cands {
		if cands[i].Move == m {
			cands[i].Weight++
			return
		}
	}
	bk.entries[key] = append(cands, Candidate{Move: m, Weight: 1})
}

// Lines returns how many lines were read.
func (bk *Book) Lines() int { return bk.lines }

// Positions returns how many distinct positions are indexed.
func (bk *Book) Positions() int { return len(bk.entries) }

// Candidates returns the legal book moves of b.
func (bk *Book) Candidates(b *pnrmg.Board) []Candidate {
	return lo.Filter(bk.entries[b.ZobristKey()], func(c Candidate, _ int) bool {
		return b.IsPseudoLegal(c.Move) && b.IsLegal(c.Move)
	})
}

// Probe picks one of the book moves of b with probability proportional to
// its weight.
func (bk *Book) Probe(b *pnrmg.Board) (pnrmg.Move, bool) {
	cands := bk.Candidates(b)
	if len(cands) == 0 {
		return pnrmg.NoMove, false
	}
	total := lo.SumBy(cands, func(c Candidate) int { return c.Weight })
	n := frand.Intn(total)
	for _, c := range cands {
		if n < c.Weight {
			return c.Move, true
		}
		n -= c.Weight
	}
	return cands[len(cands)-1].Move, true
}
