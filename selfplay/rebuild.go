package selfplay

import (
	"fmt"
	"math"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/notation"
	"github.com/brensch/baduk/rules"
	"github.com/brensch/baduk/store"
)

// OutcomeFromWinner is the inverse of WinnerName.
func OutcomeFromWinner(w string) (game.Outcome, error) {
	switch w {
	case store.WinnerBlack:
		return game.BlackWin, nil
	case store.WinnerWhite:
		return game.WhiteWin, nil
	case store.WinnerDraw:
		return game.Draw, nil
	}
	return 0, fmt.Errorf("unknown winner %q", w)
}

// RowsFromGame re-encodes the training rows of a recorded game. The ending
// rules are not stored, so the replay never ends the game on its own and the
// values come from the row's Winner.
func RowsFromGame(row store.GameRow, source string) ([]store.TrainingRow, error) {
	outcome, err := OutcomeFromWinner(row.Winner)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", row.GameID, err)
	}
	rec, err := notation.ParseRecord(row.Notation)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", row.GameID, err)
	}
	g, err := rules.NewWithOptions(rec.Width, rec.Height, rules.Options{
		Komi:                   row.Komi,
		MinMovesBeforePassEnds: math.MaxInt32,
		Superko:                row.Superko,
	})
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", row.GameID, err)
	}
	if source == "" {
		source = row.Source
	}

	rows := make([]store.TrainingRow, 0, len(rec.Moves))
	for i, m := range rec.Moves {
		tr := recordRow(g, row.GameID, m, source)
		if !g.MakeMove(m) {
			return nil, fmt.Errorf("game %s: %w: move %d (%v)", row.GameID, notation.ErrIllegalMove, i, m)
		}
		tr.Value = outcome.RewardFrom(game.Player(tr.Player))
		rows = append(rows, tr)
	}
	return rows, nil
}
