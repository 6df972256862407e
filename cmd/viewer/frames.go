package main

import (
	"fmt"
	"math"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/notation"
	"github.com/brensch/baduk/rules"
)

// replayFrames rebuilds every position of a recorded game. The ending rules
// the game was played with are not stored, so the replay never ends the game
// itself; the recorded result comes from the game row.
func replayFrames(text string, komi float64, superko bool) ([]Frame, error) {
	rec, err := notation.ParseRecord(text)
	if err != nil {
		return nil, err
	}
	g, err := rules.NewWithOptions(rec.Width, rec.Height, rules.Options{
		Komi:                   komi,
		MinMovesBeforePassEnds: math.MaxInt32,
		Superko:                superko,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notation.ErrDimensions, err)
	}

	frames := make([]Frame, 0, len(rec.Moves)+1)
	frames = append(frames, frameOf(g, game.Move{}, game.None, 0))
	for i, m := range rec.Moves {
		mover := g.Turn()
		before := g.Stones(mover.Opposite()).Count()
		if !g.MakeMove(m) {
			return nil, fmt.Errorf("%w: move %d (%v)", notation.ErrIllegalMove, i, m)
		}
		captured := before - g.Stones(mover.Opposite()).Count()
		frames = append(frames, frameOf(g, m, mover, captured))
	}
	return frames, nil
}

func frameOf(g *rules.Game, m game.Move, mover game.Player, captured int) Frame {
	f := Frame{
		Move:        g.MoveCount(),
		ToPlay:      g.Turn().String(),
		Board:       boardGrid(g),
		Captured:    captured,
		BlackStones: g.Stones(game.Black).Count(),
		WhiteStones: g.Stones(game.White).Count(),
	}
	if mover != game.None {
		text, _ := m.MarshalText()
		f.Played = string(text)
		f.Player = mover.String()
	}
	if ko, ok := g.KoPoint(); ok {
		f.Ko = &Point{X: int32(ko.Col), Y: int32(ko.Row)}
	}
	return f
}

func boardGrid(g *rules.Game) [][]int8 {
	grid := make([][]int8, g.Height())
	for row := range grid {
		grid[row] = make([]int8, g.Width())
		for col := range grid[row] {
			grid[row][col] = int8(g.GetPiece(game.Position{Col: col, Row: row}))
		}
	}
	return grid
}
