package rules

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/brensch/baduk/game"
)

func TestNew_Defaults(t *testing.T) {
	g := Standard()
	if g.Width() != 19 || g.Height() != 19 {
		t.Fatalf("size=%dx%d want=19x19", g.Width(), g.Height())
	}
	if g.Turn() != game.Black {
		t.Fatalf("turn=%v want=Black", g.Turn())
	}
	if g.IsOver() {
		t.Fatalf("new game is over")
	}
	if _, over := g.Outcome(); over {
		t.Fatalf("new game has an outcome")
	}
	if g.Komi() != DefaultKomi {
		t.Fatalf("komi=%v want=%v", g.Komi(), DefaultKomi)
	}

	g9, err := New(9, 9)
	if err != nil {
		t.Fatalf("New(9,9): %v", err)
	}
	if g9.MinMovesBeforePassEnds() != 40 || g9.MaxMoves() != 243 {
		t.Fatalf("min=%d max=%d want=40,243", g9.MinMovesBeforePassEnds(), g9.MaxMoves())
	}

	gk, err := NewWithKomi(5, 5, 0.5)
	if err != nil {
		t.Fatalf("NewWithKomi: %v", err)
	}
	if gk.Komi() != 0.5 || gk.MinMovesBeforePassEnds() != 12 || gk.MaxMoves() != 75 {
		t.Fatalf("komi=%v min=%d max=%d", gk.Komi(), gk.MinMovesBeforePassEnds(), gk.MaxMoves())
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	for _, sz := range [][2]int{{1, 5}, {5, 1}, {0, 0}, {33, 9}, {9, 33}, {-1, 9}} {
		g, err := New(sz[0], sz[1])
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Fatalf("New(%d,%d) err=%v want ErrInvalidDimensions", sz[0], sz[1], err)
		}
		if g != nil {
			t.Fatalf("New(%d,%d) returned a game with an error", sz[0], sz[1])
		}
	}
	for _, sz := range [][2]int{{2, 2}, {32, 32}, {2, 32}, {13, 7}} {
		if _, err := New(sz[0], sz[1]); err != nil {
			t.Fatalf("New(%d,%d): %v", sz[0], sz[1], err)
		}
	}
}

func TestLegalMoves_Initial(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	moves := g.LegalMoves()
	if len(moves) != 82 {
		t.Fatalf("legal moves=%d want=82", len(moves))
	}
	if !moves[len(moves)-1].IsPass() {
		t.Fatalf("last legal move=%v want=Pass", moves[len(moves)-1])
	}
	if moves[0] != game.Place(0, 0) || moves[80] != game.Place(8, 8) {
		t.Fatalf("placements out of index order: first=%v last=%v", moves[0], moves[80])
	}

	actions := g.LegalActions()
	for i, a := range actions {
		if a != i {
			t.Fatalf("action[%d]=%d", i, a)
		}
	}
}

func TestMakeMove_Basic(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	m := game.Place(0, 0)
	if !g.IsLegalMove(m) || !g.MakeMove(m) {
		t.Fatalf("opening move rejected")
	}
	if g.Turn() != game.White {
		t.Fatalf("turn=%v want=White", g.Turn())
	}
	if g.GetPiece(at(0, 0)) != game.Black {
		t.Fatalf("stone not placed")
	}
	if g.IsLegalMove(m) {
		t.Fatalf("occupied cell reported legal")
	}
	if last, ok := g.LastMove(); !ok || last != m {
		t.Fatalf("last move=%v,%v", last, ok)
	}
}

func TestMakeMove_RejectsWithoutMutation(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	play(t, g, game.Place(4, 4))
	before := snap(g)

	for _, m := range []game.Move{game.Place(9, 0), game.Place(0, 9), game.Place(-1, 0), game.Place(4, 4)} {
		if g.IsLegalMove(m) {
			t.Fatalf("%v reported legal", m)
		}
		if g.MakeMove(m) {
			t.Fatalf("%v accepted", m)
		}
		if snap(g) != before {
			t.Fatalf("rejected %v mutated the game", m)
		}
	}
}

func TestUnmakeMove_Basic(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	if g.UnmakeMove() {
		t.Fatalf("undo on empty history returned true")
	}
	play(t, g, game.Place(0, 0))
	if !g.UnmakeMove() {
		t.Fatalf("undo returned false")
	}
	if g.Turn() != game.Black || g.MoveCount() != 0 {
		t.Fatalf("turn=%v moves=%d", g.Turn(), g.MoveCount())
	}
	if g.GetPiece(at(0, 0)) != game.None {
		t.Fatalf("stone survived undo")
	}
	if g.Hash() != 0 {
		t.Fatalf("hash=%x want=0 on empty board", g.Hash())
	}
}

func TestMoveHistory(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	if len(g.MoveHistory()) != 0 {
		t.Fatalf("history not empty")
	}
	play(t, g, game.Place(0, 0), game.Place(1, 0), game.Pass())
	want := []game.Move{game.Place(0, 0), game.Place(1, 0), game.Pass()}
	if got := g.MoveHistory(); !reflect.DeepEqual(got, want) {
		t.Fatalf("history=%v want=%v", got, want)
	}
	g.UnmakeMove()
	if got := len(g.MoveHistory()); got != 2 {
		t.Fatalf("history len=%d want=2", got)
	}
}

func TestPass_EndsGameWithoutMinimum(t *testing.T) {
	g := mustNew(t, 9, 9, Options{Komi: DefaultKomi})
	play(t, g, game.Pass())
	if g.Turn() != game.White || g.IsOver() {
		t.Fatalf("after one pass: turn=%v over=%v", g.Turn(), g.IsOver())
	}
	play(t, g, game.Pass())
	outcome, over := g.Outcome()
	if !over {
		t.Fatalf("two passes did not end the game")
	}
	// Empty board, komi decides.
	if outcome != game.WhiteWin {
		t.Fatalf("outcome=%v want=WhiteWin", outcome)
	}
	if moves := g.LegalMoves(); moves != nil {
		t.Fatalf("legal moves after game over=%v", moves)
	}
	if g.IsLegalMove(game.Pass()) || g.MakeMove(game.Place(0, 0)) {
		t.Fatalf("moves accepted after game over")
	}
}

func TestPass_RequiresMinimumMoves(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	play(t, g, game.Pass(), game.Pass())
	if g.IsOver() {
		t.Fatalf("double pass ended game before min moves")
	}
	play(t, g, game.Pass())
	if g.IsOver() {
		t.Fatalf("third pass ended game before min moves")
	}
	if g.ConsecutivePasses() != 3 {
		t.Fatalf("passes=%d want=3", g.ConsecutivePasses())
	}
}

func TestPass_EndsAfterMinimumReached(t *testing.T) {
	g := mustNew(t, 9, 9, Options{Komi: DefaultKomi, MinMovesBeforePassEnds: 4})
	play(t, g, game.Place(0, 0), game.Place(1, 0), game.Pass())
	if g.IsOver() {
		t.Fatalf("single pass ended the game")
	}
	play(t, g, game.Pass())
	if !g.IsOver() {
		t.Fatalf("double pass at move 4 did not end the game")
	}
}

func TestPass_PlacementResetsCounter(t *testing.T) {
	g := mustNew(t, 9, 9, Options{Komi: DefaultKomi})
	play(t, g, game.Pass(), game.Place(3, 3), game.Pass())
	if g.IsOver() {
		t.Fatalf("non-consecutive passes ended the game")
	}
	if g.ConsecutivePasses() != 1 {
		t.Fatalf("passes=%d want=1", g.ConsecutivePasses())
	}
}

func TestMaxMoves_EndsGame(t *testing.T) {
	g := mustNew(t, 9, 9, Options{Komi: DefaultKomi, MinMovesBeforePassEnds: 100, MaxMoves: 5})
	play(t, g, game.Place(0, 0), game.Place(1, 0), game.Place(2, 0), game.Place(3, 0))
	if g.IsOver() {
		t.Fatalf("game over before max moves")
	}
	play(t, g, game.Place(4, 0))
	if _, over := g.Outcome(); !over {
		t.Fatalf("max moves did not end the game")
	}

	// Undo reopens the game; replaying the same move ends it again.
	if !g.UnmakeMove() || g.IsOver() {
		t.Fatalf("undo did not reopen the game")
	}
	play(t, g, game.Place(4, 0))
	if !g.IsOver() {
		t.Fatalf("replayed final move did not end the game")
	}
}

func TestMaxMoves_ZeroOrNegativeIsUnlimited(t *testing.T) {
	for _, limit := range []int{0, -1} {
		g := mustNew(t, 3, 3, Options{MinMovesBeforePassEnds: 1000, MaxMoves: limit})
		play(t, g, game.Place(1, 1))
		for i := 0; i < 40; i++ {
			play(t, g, game.Pass())
		}
		if g.IsOver() || g.MoveCount() != 41 {
			t.Fatalf("max=%d over=%v moves=%d want open game with 41 moves", limit, g.IsOver(), g.MoveCount())
		}
	}
}

func TestUnmakeMove_RestoresPassCounter(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	play(t, g, game.Pass(), game.Pass(), game.Place(2, 2), game.Pass())
	if g.ConsecutivePasses() != 1 {
		t.Fatalf("passes=%d want=1", g.ConsecutivePasses())
	}
	g.UnmakeMove()
	if g.ConsecutivePasses() != 0 {
		t.Fatalf("after undo of pass: passes=%d want=0", g.ConsecutivePasses())
	}
	// Undoing the placement must bring back the two passes before it.
	g.UnmakeMove()
	if g.ConsecutivePasses() != 2 {
		t.Fatalf("after undo of placement: passes=%d want=2", g.ConsecutivePasses())
	}
}

func TestClone_Independent(t *testing.T) {
	g := mustNew(t, 9, 9, Options{Komi: DefaultKomi, Superko: true})
	play(t, g, game.Place(0, 0))

	c := g.Clone()
	if c.Turn() != g.Turn() || c.IsOver() != g.IsOver() || c.MoveCount() != g.MoveCount() {
		t.Fatalf("clone differs from source")
	}
	if !reflect.DeepEqual(c, g) {
		t.Fatalf("clone not deeply equal to source")
	}

	play(t, c, game.Place(1, 1), game.Place(2, 2))
	if g.MoveCount() != 1 || g.GetPiece(at(1, 1)) != game.None {
		t.Fatalf("playing on clone changed source")
	}
	if len(g.seen) != 2 {
		t.Fatalf("source seen positions=%d want=2", len(g.seen))
	}
	c.UnmakeMove()
	c.UnmakeMove()
	c.UnmakeMove()
	if g.MoveCount() != 1 {
		t.Fatalf("undo on clone changed source")
	}
}

func TestDeterministicReplay(t *testing.T) {
	moves := []game.Move{
		game.Place(1, 0), game.Place(2, 0), game.Place(0, 1), game.Place(1, 1),
		game.Place(1, 2), game.Place(2, 2), game.Pass(), game.Place(3, 1), game.Place(2, 1),
	}
	a := mustNew(t, 5, 5, DefaultOptions(5, 5))
	b := mustNew(t, 5, 5, DefaultOptions(5, 5))
	play(t, a, moves...)
	play(t, b, moves...)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical games diverged:\n%s\n%s", a, b)
	}
}

func TestSetPiece(t *testing.T) {
	g := mustNew(t, 5, 5, DefaultOptions(5, 5))
	g.SetPiece(at(2, 2), game.White)
	if g.GetPiece(at(2, 2)) != game.White {
		t.Fatalf("SetPiece did not place")
	}
	b := g.Board()
	if g.Hash() != hashBoard(g.Geometry(), &b) {
		t.Fatalf("hash not refreshed by SetPiece")
	}
	// Off-board edits are ignored.
	g.SetPiece(at(5, 0), game.Black)
	if g.Stones(game.Black).Any() {
		t.Fatalf("off-board SetPiece placed a stone")
	}
	g.SetPiece(at(2, 2), game.None)
	if g.Hash() != 0 {
		t.Fatalf("hash=%x want=0 after clearing", g.Hash())
	}
}

func TestString(t *testing.T) {
	g := mustNew(t, 3, 3, DefaultOptions(3, 3))
	play(t, g, game.Place(1, 1))
	s := g.String()
	if !strings.HasPrefix(s, "Game(turn: White, over: false, outcome: none)\n") {
		t.Fatalf("header=%q", s)
	}
	if !strings.Contains(s, "|.|B|.|") {
		t.Fatalf("board missing from %q", s)
	}
}

func TestRecentBoards(t *testing.T) {
	g := mustNew(t, 5, 5, DefaultOptions(5, 5))
	var want []game.Board
	want = append(want, g.Board())
	for _, m := range []game.Move{game.Place(1, 0), game.Place(0, 0), game.Pass(), game.Place(4, 4), game.Place(0, 1)} {
		play(t, g, m)
		want = append(want, g.Board())
	}
	// The last move captured (0,0); walking back must bring it back.
	var got []game.Board
	for b := range g.RecentBoards(10) {
		got = append(got, b)
	}
	if len(got) != len(want) {
		t.Fatalf("boards=%d want=%d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[len(want)-1-i] {
			t.Fatalf("board %d back:\n%s\nwant:\n%s", i, got[i].String(), want[len(want)-1-i].String())
		}
	}

	n := 0
	for range g.RecentBoards(2) {
		n++
	}
	if n != 2 {
		t.Fatalf("limited boards=%d want=2", n)
	}
}
