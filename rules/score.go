package rules

import "github.com/brensch/baduk/game"

// Score returns the area score of each colour: stones on the board plus
// every empty region bordered only by that colour. Komi goes to White.
// Regions touching both colours, or neither, count for nobody.
func (g *Game) Score() (black, white float64) {
	geo := &g.geo
	blackArea, whiteArea := g.Territory()
	black = float64(geo.Count(g.board.Black()) + geo.Count(blackArea))
	white = float64(geo.Count(g.board.White())+geo.Count(whiteArea)) + g.opts.Komi
	return black, white
}

// Territory returns the empty cells credited to each colour by Score.
func (g *Game) Territory() (black, white game.Bitset) {
	geo := &g.geo
	empty := geo.Empty(&g.board)
	remaining := empty
	for {
		seed, ok := remaining.LowestBit()
		if !ok {
			return black, white
		}
		region := geo.FloodFill(game.Single(seed), empty)
		remaining = geo.AndNot(remaining, region)

		border := geo.Neighbors(region)
		touchesBlack := geo.Any(geo.And(border, g.board.Black()))
		touchesWhite := geo.Any(geo.And(border, g.board.White()))
		switch {
		case touchesBlack && !touchesWhite:
			black = geo.Or(black, region)
		case touchesWhite && !touchesBlack:
			white = geo.Or(white, region)
		}
	}
}

func (g *Game) determineOutcome() game.Outcome {
	black, white := g.Score()
	switch {
	case black > white:
		return game.BlackWin
	case white > black:
		return game.WhiteWin
	}
	return game.Draw
}
