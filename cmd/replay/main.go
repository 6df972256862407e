package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/brensch/baduk/notation"
	"github.com/brensch/baduk/rules"
	"github.com/brensch/baduk/selfplay"
	"github.com/brensch/baduk/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run replays a notation string, printing every position and the final
// score. With -record-dir the game is also written as a one-row game batch
// the viewer can read.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(out)
	text := fs.String("game", "", `Game in notation form, e.g. "9x9:4,4;pass;3,3"`)
	komi := fs.Float64("komi", rules.DefaultKomi, "Komi added to White's score")
	minMoves := fs.Int("min-moves", -1, "Moves before two passes end the game (-1: width*height/2)")
	maxMoves := fs.Int("max-moves", -1, "Hard move limit, 0 for none (-1: width*height*3)")
	superko := fs.Bool("superko", false, "Forbid moves that repeat an earlier position")
	finalOnly := fs.Bool("final-only", false, "Print only the last position")
	recordDir := fs.String("record-dir", "", "If set, write the game to <dir>/games as parquet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *text == "" {
		return fmt.Errorf("-game is required")
	}

	rec, err := notation.ParseRecord(*text)
	if err != nil {
		return err
	}
	opts := rules.DefaultOptionsWithKomi(rec.Width, rec.Height, *komi)
	if *minMoves >= 0 {
		opts.MinMovesBeforePassEnds = *minMoves
	}
	if *maxMoves >= 0 {
		opts.MaxMoves = *maxMoves
	}
	opts.Superko = *superko

	g, err := rules.NewWithOptions(rec.Width, rec.Height, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", notation.ErrDimensions, err)
	}
	if !*finalOnly {
		fmt.Fprint(out, selfplay.FormatBoard(g))
	}
	for i, m := range rec.Moves {
		if g.IsOver() {
			return fmt.Errorf("move %d (%v) played after the game ended", i, m)
		}
		if !g.MakeMove(m) {
			return fmt.Errorf("%w: move %d (%v)", notation.ErrIllegalMove, i, m)
		}
		if !*finalOnly {
			fmt.Fprint(out, selfplay.FormatBoard(g))
		}
	}
	if *finalOnly {
		fmt.Fprint(out, selfplay.FormatBoard(g))
	}

	black, white := g.Score()
	fmt.Fprintf(out, "\nMoves: %d\nScore: Black %.1f, White %.1f (komi %.1f)\n", g.MoveCount(), black, white, g.Komi())
	outcome, over := g.Outcome()
	if over {
		fmt.Fprintf(out, "Result: %s\n", outcome)
	} else {
		fmt.Fprintln(out, "Result: game not finished")
	}

	if *recordDir == "" {
		return nil
	}
	now := time.Now()
	row := store.GameRow{
		GameID:       fmt.Sprintf("replay_%d", now.UnixNano()),
		Width:        int32(g.Width()),
		Height:       int32(g.Height()),
		Komi:         g.Komi(),
		Superko:      g.Superko(),
		Moves:        int32(g.MoveCount()),
		Notation:     notation.Format(g),
		BlackScore:   black,
		WhiteScore:   white,
		StartedAtMs:  now.UnixMilli(),
		FinishedAtMs: now.UnixMilli(),
		Source:       "replay",
	}
	if over {
		row.Winner = selfplay.WinnerName(outcome)
	}
	path, err := store.WriteGameBatch(*recordDir, []store.GameRow{row})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %s to %s\n", row.GameID, path)
	return nil
}
