package rules

import (
	"testing"

	"github.com/brensch/baduk/game"
)

func mustNew(t testing.TB, w, h int, opts Options) *Game {
	t.Helper()
	g, err := NewWithOptions(w, h, opts)
	if err != nil {
		t.Fatalf("NewWithOptions(%d, %d): %v", w, h, err)
	}
	return g
}

func play(t testing.TB, g *Game, moves ...game.Move) {
	t.Helper()
	for i, m := range moves {
		if !g.MakeMove(m) {
			t.Fatalf("move %d (%v) rejected\n%s", i, m, g)
		}
	}
}

func at(col, row int) game.Position { return game.Position{Col: col, Row: row} }

// groupLiberties counts the liberties of the group containing start by
// walking the board cell by cell, independent of the bitset code.
func groupLiberties(b *game.Board, start game.Position) int {
	colour := b.GetPiece(start)
	w, h := b.Width(), b.Height()
	seen := map[game.Position]bool{start: true}
	libs := map[game.Position]bool{}
	stack := []game.Position{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := game.Position{Col: p.Col + d[0], Row: p.Row + d[1]}
			if !n.Valid(w, h) {
				continue
			}
			switch b.GetPiece(n) {
			case game.None:
				libs[n] = true
			case colour:
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return len(libs)
}

// checkBoardInvariants fails if colours overlap or any group on the board
// has no liberties.
func checkBoardInvariants(t *testing.T, g *Game) {
	t.Helper()
	b := g.Board()
	if b.Black().And(b.White()).Any() {
		t.Fatalf("black and white share a cell\n%s", g)
	}
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			p := at(col, row)
			if b.GetPiece(p) == game.None {
				continue
			}
			if groupLiberties(&b, p) == 0 {
				t.Fatalf("group at %v has no liberties\n%s", p, g)
			}
		}
	}
}

type snapshot struct {
	board   game.Board
	turn    game.Player
	ko      game.Position
	hasKo   bool
	passes  int
	moves   int
	hash    uint64
	over    bool
	outcome game.Outcome
}

func snap(g *Game) snapshot {
	ko, hasKo := g.KoPoint()
	outcome, over := g.Outcome()
	return snapshot{
		board:   g.Board(),
		turn:    g.Turn(),
		ko:      ko,
		hasKo:   hasKo,
		passes:  g.ConsecutivePasses(),
		moves:   g.MoveCount(),
		hash:    g.Hash(),
		over:    over,
		outcome: outcome,
	}
}
