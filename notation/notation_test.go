package notation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/rules"
)

func TestFormat(t *testing.T) {
	g, err := rules.New(9, 7)
	if err != nil {
		t.Fatalf("rules.New: %v", err)
	}
	if got := Format(g); got != "9x7:" {
		t.Fatalf("empty=%q want=%q", got, "9x7:")
	}
	for _, m := range []game.Move{game.Place(3, 4), game.Pass(), game.Place(0, 6)} {
		g.MakeMove(m)
	}
	if got := Format(g); got != "9x7:3,4;pass;0,6" {
		t.Fatalf("format=%q", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"5x5:",
		"5x5:1,0;0,0;0,1",
		"9x9:4,4;pass;3,3;pass;pass",
		"13x7:12,6;0,0",
	} {
		g, err := Parse(s, nil)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := Format(g); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
}

func TestParse_ReplaysCaptures(t *testing.T) {
	g, err := Parse("5x5:1,0;0,0;0,1", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.GetPiece(game.Position{Col: 0, Row: 0}) != game.None {
		t.Fatalf("capture not replayed\n%s", g)
	}
	if g.Turn() != game.White {
		t.Fatalf("turn=%v want=White", g.Turn())
	}
}

func TestParse_Legacy(t *testing.T) {
	g, err := Parse("3,3;15,15", nil)
	if err != nil {
		t.Fatalf("Parse legacy: %v", err)
	}
	if g.Width() != 19 || g.Height() != 19 || g.MoveCount() != 2 {
		t.Fatalf("legacy game=%dx%d moves=%d", g.Width(), g.Height(), g.MoveCount())
	}

	g, err = Parse("", nil)
	if err != nil || g.Width() != 19 || g.MoveCount() != 0 {
		t.Fatalf("empty legacy: %v", err)
	}
}

func TestParse_Options(t *testing.T) {
	opts := rules.Options{Komi: 0.5, MinMovesBeforePassEnds: 0}
	g, err := Parse("5x5:pass;pass", &opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if outcome, over := g.Outcome(); !over || outcome != game.WhiteWin {
		t.Fatalf("outcome=%v over=%v", outcome, over)
	}
	if g.Komi() != 0.5 {
		t.Fatalf("komi=%v", g.Komi())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"9:1,1", ErrDimensions},
		{"ax9:1,1", ErrDimensions},
		{"1x9:", ErrDimensions},
		{"40x40:", ErrDimensions},
		{"9x9:1;2", game.ErrMoveSyntax},
		{"9x9:1,1;;2,2", game.ErrMoveSyntax},
		{"9x9:1,1;1,1", ErrIllegalMove},
		{"9x9:9,0", ErrIllegalMove},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in, nil)
		if !errors.Is(err, tt.want) {
			t.Fatalf("Parse(%q) err=%v want %v", tt.in, err, tt.want)
		}
	}
	_, err := Parse("1x9:", nil)
	if !errors.Is(err, rules.ErrInvalidDimensions) {
		t.Fatalf("err=%v should also wrap rules.ErrInvalidDimensions", err)
	}
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(" 4x3:0,0;pass ")
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	want := Record{Width: 4, Height: 3, Moves: []game.Move{game.Place(0, 0), game.Pass()}}
	if !reflect.DeepEqual(rec, want) {
		t.Fatalf("record=%+v want=%+v", rec, want)
	}
	if got := FormatMoves(rec.Width, rec.Height, rec.Moves); got != "4x3:0,0;pass" {
		t.Fatalf("FormatMoves=%q", got)
	}
}
