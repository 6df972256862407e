// Package rules implements the Go game state machine on top of package game:
// legal move generation, captures, suicide and ko, reversible moves and area
// scoring.
//
// A Game is not safe for concurrent use. Parallel simulations each hold their
// own Game, typically obtained with Clone.
package rules

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/brensch/baduk/game"
)

const DefaultKomi = 7.5

// Options configures a Game beyond its dimensions.
type Options struct {
	// Komi is added to White's score.
	Komi float64
	// MinMovesBeforePassEnds is the move count (including the final pass) that
	// must be reached before two consecutive passes end the game.
	MinMovesBeforePassEnds int
	// MaxMoves ends the game once that many moves have been played. Zero or
	// negative disables the limit.
	MaxMoves int
	// Superko forbids placements that recreate an earlier board position.
	Superko bool
}

// DefaultOptions returns the options New uses for a width x height board:
// DefaultKomi, pass ending after area/2 moves and a hard stop at area*3.
func DefaultOptions(width, height int) Options {
	return DefaultOptionsWithKomi(width, height, DefaultKomi)
}

func DefaultOptionsWithKomi(width, height int, komi float64) Options {
	area := width * height
	return Options{
		Komi:                   komi,
		MinMovesBeforePassEnds: area / 2,
		MaxMoves:               area * 3,
	}
}

// HistoryEntry is the undo record pushed by every accepted move.
type HistoryEntry struct {
	Move game.Move
	// Captured holds the opponent stones removed by the move.
	Captured   game.Bitset
	PrevKo     game.Position
	PrevHasKo  bool
	PrevPasses int
}

type Game struct {
	board game.Board
	geo   game.Geometry
	turn  game.Player

	history []HistoryEntry
	passes  int
	koPoint game.Position
	hasKo   bool

	opts Options

	over    bool
	outcome game.Outcome

	// hash is the Zobrist hash of the current board. positions is a stack
	// with one hash per position reached, seen counts the same hashes.
	// positions and seen are only kept when Options.Superko is set.
	hash      uint64
	positions []uint64
	seen      map[uint64]int
}

// New returns an empty width x height game with DefaultOptions.
func New(width, height int) (*Game, error) {
	return NewWithOptions(width, height, DefaultOptions(width, height))
}

func NewWithKomi(width, height int, komi float64) (*Game, error) {
	return NewWithOptions(width, height, DefaultOptionsWithKomi(width, height, komi))
}

// NewWithOptions returns an empty game with opts as given. A MaxMoves of
// zero means no move cap, not a game that ends on its first move.
func NewWithOptions(width, height int, opts Options) (*Game, error) {
	if width < game.MinSize || width > game.MaxSize || height < game.MinSize || height > game.MaxSize {
		return nil, fmt.Errorf("%w: %dx%d, each side must be in [%d, %d]",
			ErrInvalidDimensions, width, height, game.MinSize, game.MaxSize)
	}
	g := &Game{
		board: game.NewBoard(width, height),
		geo:   game.NewGeometry(width, height),
		turn:  game.Black,
		opts:  opts,
	}
	if opts.Superko {
		g.positions = []uint64{g.hash}
		g.seen = map[uint64]int{g.hash: 1}
	}
	return g, nil
}

// Standard returns a 19x19 game with DefaultOptions.
func Standard() *Game {
	g, err := New(19, 19)
	if err != nil {
		panic(err)
	}
	return g
}

// Clone returns a fully independent copy of g.
func (g *Game) Clone() *Game {
	c := *g
	c.history = slices.Clone(g.history)
	c.positions = slices.Clone(g.positions)
	c.seen = maps.Clone(g.seen)
	return &c
}

func (g *Game) Width() int                  { return g.geo.Width }
func (g *Game) Height() int                 { return g.geo.Height }
func (g *Game) Geometry() *game.Geometry    { return &g.geo }
func (g *Game) Turn() game.Player           { return g.turn }
func (g *Game) IsOver() bool                { return g.over }
func (g *Game) Komi() float64               { return g.opts.Komi }
func (g *Game) MinMovesBeforePassEnds() int { return g.opts.MinMovesBeforePassEnds }
func (g *Game) MaxMoves() int               { return g.opts.MaxMoves }
func (g *Game) Superko() bool               { return g.opts.Superko }
func (g *Game) Options() Options            { return g.opts }
func (g *Game) MoveCount() int              { return len(g.history) }
func (g *Game) ConsecutivePasses() int      { return g.passes }

// Hash is the Zobrist hash of the stones on the board. It ignores the side
// to move and the ko point.
func (g *Game) Hash() uint64 { return g.hash }

// Outcome reports the result once the game is over.
func (g *Game) Outcome() (game.Outcome, bool) {
	return g.outcome, g.over
}

// KoPoint returns the cell the side to move may not play on, if any.
func (g *Game) KoPoint() (game.Position, bool) {
	return g.koPoint, g.hasKo
}

// Board returns a copy of the stones.
func (g *Game) Board() game.Board { return g.board }

// Stones returns the cells holding p stones.
func (g *Game) Stones(p game.Player) game.Bitset { return g.board.StonesFor(p) }

func (g *Game) GetPiece(pos game.Position) game.Player { return g.board.GetPiece(pos) }

// MoveHistory returns the moves played so far, oldest first.
func (g *Game) MoveHistory() []game.Move {
	out := make([]game.Move, len(g.history))
	for i, e := range g.history {
		out[i] = e.Move
	}
	return out
}

// LastMove returns the most recent move, if any.
func (g *Game) LastMove() (game.Move, bool) {
	if len(g.history) == 0 {
		return game.Move{}, false
	}
	return g.history[len(g.history)-1].Move, true
}

// SetPiece edits the board directly with no rule checks. It is meant for
// setting up positions in tests and tools.
func (g *Game) SetPiece(pos game.Position, p game.Player) {
	if !g.geo.Contains(pos) {
		return
	}
	g.board.SetPiece(pos, p)
	g.hash = hashBoard(&g.geo, &g.board)
	g.syncPositionTop()
}

func (g *Game) String() string {
	outcome := "none"
	if g.over {
		outcome = g.outcome.String()
	}
	return fmt.Sprintf("Game(turn: %s, over: %t, outcome: %s)\n%s",
		g.turn, g.over, outcome, g.board.String())
}

// RecentBoards yields up to n boards, newest first: the current board, then
// the board before the last move, and so on back to the start of the game.
func (g *Game) RecentBoards(n int) iter.Seq[game.Board] {
	return func(yield func(game.Board) bool) {
		b := g.board
		left := n
		for i := len(g.history); left > 0; i-- {
			if !yield(b) {
				return
			}
			left--
			if i == 0 {
				return
			}
			e := &g.history[i-1]
			pos, ok := e.Move.Position()
			if !ok {
				continue
			}
			idx := g.geo.Index(pos)
			mover := b.GetPiece(pos)
			b.ClearIndex(idx)
			b.RestoreStones(e.Captured, mover.Opposite())
		}
	}
}
