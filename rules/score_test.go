package rules

import (
	"testing"

	"github.com/brensch/baduk/game"
)

func TestScore_EmptyBoard(t *testing.T) {
	g := mustNew(t, 9, 9, DefaultOptions(9, 9))
	black, white := g.Score()
	if black != 0 || white != DefaultKomi {
		t.Fatalf("score=%v,%v want=0,%v", black, white, DefaultKomi)
	}
}

func TestScore_BlackTerritory(t *testing.T) {
	g := mustNew(t, 5, 5, Options{})
	play(t, g,
		game.Place(0, 2), game.Pass(),
		game.Place(0, 3), game.Pass(),
		game.Place(1, 2), game.Pass(),
		game.Pass(),
	)
	outcome, over := g.Outcome()
	if !over {
		t.Fatalf("game not over after final pass")
	}
	black, white := g.Score()
	if !(black > white) {
		t.Fatalf("score=%v,%v want black ahead", black, white)
	}
	if outcome != game.BlackWin {
		t.Fatalf("outcome=%v want=BlackWin", outcome)
	}
	blackArea, _ := g.Territory()
	if !blackArea.Get(at(0, 4).Index(5)) {
		t.Fatalf("(0,4) not in black territory")
	}
	if black != 25 || white != 0 {
		t.Fatalf("score=%v,%v want=25,0", black, white)
	}
}

func TestScore_SquareOfStones(t *testing.T) {
	g := mustNew(t, 5, 5, Options{Komi: 0.5})
	play(t, g,
		game.Place(0, 0), game.Pass(),
		game.Place(1, 0), game.Pass(),
		game.Place(0, 1), game.Pass(),
		game.Place(1, 1), game.Pass(),
		game.Pass(),
	)
	black, white := g.Score()
	if !(black > white) {
		t.Fatalf("score=%v,%v want black ahead", black, white)
	}
	if outcome, _ := g.Outcome(); outcome != game.BlackWin {
		t.Fatalf("outcome=%v want=BlackWin", outcome)
	}
}

func TestScore_MixedRegionIsDame(t *testing.T) {
	// A wall of black in column 1 and white in column 3 leaves column 0 to
	// Black, column 4 to White and column 2 touching both.
	g := mustNew(t, 5, 5, Options{})
	for row := 0; row < 5; row++ {
		g.SetPiece(at(1, row), game.Black)
		g.SetPiece(at(3, row), game.White)
	}
	black, white := g.Score()
	if black != 10 || white != 10 {
		t.Fatalf("score=%v,%v want=10,10", black, white)
	}
	blackArea, whiteArea := g.Territory()
	if blackArea.Count() != 5 || whiteArea.Count() != 5 {
		t.Fatalf("territory=%d,%d want=5,5", blackArea.Count(), whiteArea.Count())
	}
	for row := 0; row < 5; row++ {
		idx := at(2, row).Index(5)
		if blackArea.Get(idx) || whiteArea.Get(idx) {
			t.Fatalf("dame cell (2,%d) credited", row)
		}
	}
	if got := g.determineOutcome(); got != game.Draw {
		t.Fatalf("outcome=%v want=Draw", got)
	}
}

func TestScore_KomiBreaksTie(t *testing.T) {
	g := mustNew(t, 4, 4, Options{Komi: 0.5})
	for row := 0; row < 4; row++ {
		g.SetPiece(at(1, row), game.Black)
		g.SetPiece(at(2, row), game.White)
	}
	black, white := g.Score()
	if black != 8 || white != 8.5 {
		t.Fatalf("score=%v,%v want=8,8.5", black, white)
	}
	if got := g.determineOutcome(); got != game.WhiteWin {
		t.Fatalf("outcome=%v want=WhiteWin", got)
	}
}
