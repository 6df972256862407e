package rules

import "github.com/brensch/baduk/game"

// wouldBeSuicide reports whether a p stone on idx would leave its group
// without liberties and capture nothing. idx must be empty.
func (g *Game) wouldBeSuicide(idx int, p game.Player) bool {
	geo := &g.geo
	bit := game.Single(idx)
	own := geo.Or(g.board.StonesFor(p), bit)
	opp := g.board.StonesFor(p.Opposite())
	empty := geo.AndNot(geo.BoardMask, geo.Or(own, opp))

	if geo.Any(geo.And(geo.Neighbors(bit), empty)) {
		return false
	}

	group := geo.FloodFill(bit, own)
	groupNbrs := geo.Neighbors(group)
	if geo.Any(geo.And(groupNbrs, empty)) {
		return false
	}

	remaining := geo.And(groupNbrs, opp)
	for {
		seed, ok := remaining.LowestBit()
		if !ok {
			return true
		}
		oppGroup := geo.FloodFill(game.Single(seed), opp)
		remaining = geo.AndNot(remaining, oppGroup)
		if geo.IsEmpty(geo.And(geo.Neighbors(oppGroup), empty)) {
			return false
		}
	}
}

// capturedBy returns the opponent stones removed if p plays on idx. idx
// must be empty.
func (g *Game) capturedBy(idx int, p game.Player) game.Bitset {
	geo := &g.geo
	bit := game.Single(idx)
	opp := g.board.StonesFor(p.Opposite())
	occupied := geo.Or(g.board.Occupied(), bit)
	empty := geo.AndNot(geo.BoardMask, occupied)

	var captured game.Bitset
	remaining := geo.And(geo.Neighbors(bit), opp)
	for {
		seed, ok := remaining.LowestBit()
		if !ok {
			return captured
		}
		oppGroup := geo.FloodFill(game.Single(seed), opp)
		remaining = geo.AndNot(remaining, oppGroup)
		if geo.IsEmpty(geo.And(geo.Neighbors(oppGroup), empty)) {
			captured = geo.Or(captured, oppGroup)
		}
	}
}

// repeatsPosition reports whether a p stone on idx would recreate a board
// position already reached in this game.
func (g *Game) repeatsPosition(idx int, p game.Player) bool {
	captured := g.capturedBy(idx, p)
	h := g.hash ^ stoneKey(idx, p)
	h = xorStones(h, &g.geo, captured, p.Opposite())
	return g.seen[h] > 0
}

// LegalMoves returns every legal placement in index order followed by Pass.
// It returns nil once the game is over.
func (g *Game) LegalMoves() []game.Move {
	if g.over {
		return nil
	}
	moves := make([]game.Move, 0, g.geo.Area+1)
	it := g.geo.Iter(g.geo.Empty(&g.board))
	for {
		idx, ok := it.Next()
		if !ok {
			break
		}
		if !g.placementAllowed(idx) {
			continue
		}
		pos := g.geo.PositionOf(idx)
		moves = append(moves, game.Place(pos.Col, pos.Row))
	}
	return append(moves, game.Pass())
}

// LegalActions is LegalMoves in action-index form.
func (g *Game) LegalActions() []int {
	moves := g.LegalMoves()
	out := make([]int, len(moves))
	for i, m := range moves {
		out[i] = game.EncodeAction(m, g.geo.Width, g.geo.Height)
	}
	return out
}

// IsLegalMove reports whether m may be played now.
func (g *Game) IsLegalMove(m game.Move) bool {
	if g.over {
		return false
	}
	pos, ok := m.Position()
	if !ok {
		return true
	}
	if !g.geo.Contains(pos) {
		return false
	}
	idx := g.geo.Index(pos)
	if g.board.Occupied().Get(idx) {
		return false
	}
	return g.placementAllowed(idx)
}

// placementAllowed applies the ko, suicide and superko checks to an empty
// cell.
func (g *Game) placementAllowed(idx int) bool {
	if g.hasKo && g.geo.Index(g.koPoint) == idx {
		return false
	}
	if g.wouldBeSuicide(idx, g.turn) {
		return false
	}
	if g.opts.Superko && g.repeatsPosition(idx, g.turn) {
		return false
	}
	return true
}
