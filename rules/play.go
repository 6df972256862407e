package rules

import "github.com/brensch/baduk/game"

// MakeMove plays m for the side to move. An illegal move returns false and
// leaves the game untouched.
func (g *Game) MakeMove(m game.Move) bool {
	if !g.IsLegalMove(m) {
		return false
	}

	entry := HistoryEntry{
		Move:       m,
		PrevKo:     g.koPoint,
		PrevHasKo:  g.hasKo,
		PrevPasses: g.passes,
	}
	g.hasKo = false
	g.koPoint = game.Position{}

	if pos, ok := m.Position(); ok {
		g.place(g.geo.Index(pos), &entry)
	} else {
		g.passes++
		if g.passes >= 2 && len(g.history)+1 >= g.opts.MinMovesBeforePassEnds {
			g.finish()
		}
	}

	g.history = append(g.history, entry)
	g.turn = g.turn.Opposite()
	g.pushPosition()

	if !g.over && g.opts.MaxMoves > 0 && len(g.history) >= g.opts.MaxMoves {
		g.finish()
	}
	return true
}

func (g *Game) place(idx int, entry *HistoryEntry) {
	p := g.turn
	opp := p.Opposite()
	geo := &g.geo

	g.passes = 0
	captured := g.capturedBy(idx, p)
	g.board.Place(idx, p)
	g.board.RemoveStones(captured)
	entry.Captured = captured

	g.hash ^= stoneKey(idx, p)
	g.hash = xorStones(g.hash, geo, captured, opp)

	if geo.Count(captured) != 1 {
		return
	}
	bit := game.Single(idx)
	if geo.Count(geo.FloodFill(bit, g.board.StonesFor(p))) != 1 {
		return
	}
	libs := geo.And(geo.Neighbors(bit), geo.Empty(&g.board))
	if geo.Count(libs) == 1 {
		capIdx, _ := captured.LowestBit()
		g.koPoint = geo.PositionOf(capIdx)
		g.hasKo = true
	}
}

func (g *Game) finish() {
	g.over = true
	g.outcome = g.determineOutcome()
}

// UnmakeMove takes back the last move. It returns false when there is
// nothing to undo.
func (g *Game) UnmakeMove() bool {
	if len(g.history) == 0 {
		return false
	}
	entry := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	g.turn = g.turn.Opposite()
	g.koPoint = entry.PrevKo
	g.hasKo = entry.PrevHasKo
	g.passes = entry.PrevPasses
	g.over = false
	g.outcome = 0

	if pos, ok := entry.Move.Position(); ok {
		idx := g.geo.Index(pos)
		opp := g.turn.Opposite()
		g.board.ClearIndex(idx)
		g.board.RestoreStones(entry.Captured, opp)
		g.hash ^= stoneKey(idx, g.turn)
		g.hash = xorStones(g.hash, &g.geo, entry.Captured, opp)
	}
	g.popPosition()
	return true
}

func (g *Game) pushPosition() {
	if !g.opts.Superko {
		return
	}
	g.positions = append(g.positions, g.hash)
	g.seen[g.hash]++
}

func (g *Game) popPosition() {
	if !g.opts.Superko || len(g.positions) == 0 {
		return
	}
	g.forget(g.positions[len(g.positions)-1])
	g.positions = g.positions[:len(g.positions)-1]
	g.syncPositionTop()
}

// syncPositionTop makes the newest recorded position match the current
// hash, which only differs after SetPiece edits.
func (g *Game) syncPositionTop() {
	if !g.opts.Superko {
		return
	}
	if len(g.positions) == 0 {
		g.positions = append(g.positions, g.hash)
		g.seen[g.hash]++
		return
	}
	top := &g.positions[len(g.positions)-1]
	if *top == g.hash {
		return
	}
	g.forget(*top)
	*top = g.hash
	g.seen[g.hash]++
}

func (g *Game) forget(h uint64) {
	if g.seen[h] <= 1 {
		delete(g.seen, h)
		return
	}
	g.seen[h]--
}
