// Package notation reads and writes the compact text form of a game:
//
//	<W>x<H>:<move>;<move>;...
//
// where each move is "col,row" or "pass". A string without the "<W>x<H>:"
// header is the legacy form and is taken to be a 19x19 game.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/rules"
)

const (
	LegacyWidth  = 19
	LegacyHeight = 19
)

var (
	ErrDimensions  = errors.New("malformed dimensions")
	ErrIllegalMove = errors.New("illegal move")
)

// Record is a parsed game string before it is replayed.
type Record struct {
	Width  int
	Height int
	Moves  []game.Move
}

// Format writes the moves played in g.
func Format(g *rules.Game) string {
	return FormatMoves(g.Width(), g.Height(), g.MoveHistory())
}

func FormatMoves(width, height int, moves []game.Move) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(width))
	sb.WriteByte('x')
	sb.WriteString(strconv.Itoa(height))
	sb.WriteByte(':')
	for i, m := range moves {
		if i > 0 {
			sb.WriteByte(';')
		}
		text, _ := m.MarshalText()
		sb.Write(text)
	}
	return sb.String()
}

// ParseRecord splits s into dimensions and moves without checking legality.
func ParseRecord(s string) (Record, error) {
	s = strings.TrimSpace(s)
	rec := Record{Width: LegacyWidth, Height: LegacyHeight}
	body := s
	if head, rest, ok := strings.Cut(s, ":"); ok {
		ws, hs, ok := strings.Cut(head, "x")
		if !ok {
			return Record{}, fmt.Errorf("%w: %q", ErrDimensions, head)
		}
		w, werr := strconv.Atoi(ws)
		h, herr := strconv.Atoi(hs)
		if werr != nil || herr != nil {
			return Record{}, fmt.Errorf("%w: %q", ErrDimensions, head)
		}
		rec.Width, rec.Height = w, h
		body = rest
	}
	if body == "" {
		return rec, nil
	}
	for i, tok := range strings.Split(body, ";") {
		var m game.Move
		if err := m.UnmarshalText([]byte(tok)); err != nil {
			return Record{}, fmt.Errorf("move %d: %w", i, err)
		}
		rec.Moves = append(rec.Moves, m)
	}
	return rec, nil
}

// Parse replays s on a fresh game. With a nil opts the game uses
// rules.DefaultOptions for the parsed dimensions.
func Parse(s string, opts *rules.Options) (*rules.Game, error) {
	rec, err := ParseRecord(s)
	if err != nil {
		return nil, err
	}
	return rec.Replay(opts)
}

// Replay plays the record's moves on a new game.
func (r Record) Replay(opts *rules.Options) (*rules.Game, error) {
	o := rules.DefaultOptions(r.Width, r.Height)
	if opts != nil {
		o = *opts
	}
	g, err := rules.NewWithOptions(r.Width, r.Height, o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDimensions, err)
	}
	for i, m := range r.Moves {
		if !g.MakeMove(m) {
			return nil, fmt.Errorf("%w: move %d (%v)", ErrIllegalMove, i, m)
		}
	}
	return g, nil
}
