// Package selfplay plays complete games with uniformly random legal moves and
// turns them into training rows. Each call owns its Game, so any number of
// workers can run side by side.
package selfplay

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brensch/baduk/convert"
	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/notation"
	"github.com/brensch/baduk/rules"
	"github.com/brensch/baduk/store"
	"github.com/rs/xid"
)

const DefaultSource = "selfplay_random"

// Config describes the games a worker plays.
type Config struct {
	Width  int
	Height int
	Rules  rules.Options
	// AvoidEarlyPass drops Pass from the candidates while a placement is
	// legal and the game is still short of Rules.MinMovesBeforePassEnds.
	AvoidEarlyPass bool
	Verbose        bool
	// Source is stored on every row. Empty means DefaultSource.
	Source string
}

// DefaultConfig is a width x height game with rules.DefaultOptions and early
// passes avoided.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:          width,
		Height:         height,
		Rules:          rules.DefaultOptions(width, height),
		AvoidEarlyPass: true,
	}
}

func (c Config) source() string {
	if c.Source == "" {
		return DefaultSource
	}
	return c.Source
}

type GameResult struct {
	Outcome    game.Outcome
	BlackScore float64
	WhiteScore float64
	Moves      int
}

// InProgressGame is a resumable snapshot of an unfinished game. The moves so
// far are kept as notation; rows are rebuilt from them on resume.
type InProgressGame struct {
	GameID      string `json:"game_id"`
	WorkerID    int    `json:"worker_id"`
	Notation    string `json:"notation"`
	RNGSeed     int64  `json:"rng_seed"`
	Seed        int64  `json:"seed"`
	StartedAtMs int64  `json:"started_at_ms"`
	PausedAt    int    `json:"paused_at"`
}

type PlayGameOutcome struct {
	Completed  bool
	Rows       []store.TrainingRow
	Game       store.GameRow
	Result     GameResult
	Checkpoint *InProgressGame
}

type PlayGameOptions struct {
	Resume        *InProgressGame
	StopRequested func() bool
	// Seed fixes the RNG of a new game. Zero picks one from the clock.
	Seed int64
}

// PlayGame plays one game to the end. It returns nil rows if ctx is
// cancelled first.
func PlayGame(ctx context.Context, workerID int, cfg Config, onStep func()) ([]store.TrainingRow, GameResult, error) {
	out, err := PlayGameWithOptions(ctx, workerID, cfg, onStep, PlayGameOptions{})
	if err != nil || !out.Completed {
		return nil, out.Result, err
	}
	return out.Rows, out.Result, nil
}

func PlayGameWithOptions(ctx context.Context, workerID int, cfg Config, onStep func(), opts PlayGameOptions) (PlayGameOutcome, error) {
	stopRequested := opts.StopRequested
	if stopRequested == nil {
		stopRequested = func() bool { return false }
	}

	var (
		g         *rules.Game
		gameID    string
		seed      int64
		rngSeed   int64
		startedAt int64
		rows      = make([]store.TrainingRow, 0, 256)
	)

	if r := opts.Resume; r != nil && r.GameID != "" {
		gameID, seed, rngSeed, startedAt = r.GameID, r.Seed, r.RNGSeed, r.StartedAtMs
		if rngSeed == 0 {
			rngSeed = time.Now().UnixNano() + int64(workerID)*1000003
		}
		rec, err := notation.ParseRecord(r.Notation)
		if err != nil {
			return PlayGameOutcome{}, fmt.Errorf("resume %s: %w", gameID, err)
		}
		if rec.Width != cfg.Width || rec.Height != cfg.Height {
			return PlayGameOutcome{}, fmt.Errorf("resume %s: checkpoint is %dx%d, config is %dx%d",
				gameID, rec.Width, rec.Height, cfg.Width, cfg.Height)
		}
		if g, err = rules.NewWithOptions(cfg.Width, cfg.Height, cfg.Rules); err != nil {
			return PlayGameOutcome{}, err
		}
		for i, m := range rec.Moves {
			row := recordRow(g, gameID, m, cfg.source())
			if !g.MakeMove(m) {
				return PlayGameOutcome{}, fmt.Errorf("resume %s: %w: move %d (%v)", gameID, notation.ErrIllegalMove, i, m)
			}
			rows = append(rows, row)
		}
	} else {
		var err error
		if g, err = rules.NewWithOptions(cfg.Width, cfg.Height, cfg.Rules); err != nil {
			return PlayGameOutcome{}, err
		}
		seed = opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano() + int64(workerID)*1000003
		}
		rngSeed = seed
		startedAt = time.Now().UnixMilli()
		gameID = "selfplay_" + xid.New().String()
	}

	rng := rand.New(rand.NewSource(rngSeed))

	checkpoint := func() PlayGameOutcome {
		return PlayGameOutcome{
			Result: GameResult{Moves: g.MoveCount()},
			Checkpoint: &InProgressGame{
				GameID:      gameID,
				WorkerID:    workerID,
				Notation:    notation.Format(g),
				RNGSeed:     rng.Int63(),
				Seed:        seed,
				StartedAtMs: startedAt,
				PausedAt:    g.MoveCount(),
			},
		}
	}

	for !g.IsOver() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return checkpoint(), nil
			default:
			}
		}
		if stopRequested() {
			return checkpoint(), nil
		}

		m := chooseMove(g, cfg, rng)
		row := recordRow(g, gameID, m, cfg.source())
		mover := g.Turn()
		if !g.MakeMove(m) {
			return PlayGameOutcome{}, fmt.Errorf("game %s: legal move %v rejected", gameID, m)
		}
		rows = append(rows, row)

		if cfg.Verbose {
			log.Printf("[Worker %d] Move %d: %s plays %v", workerID, g.MoveCount(), mover, m)
			PrintBoard(g)
		}
		if onStep != nil {
			onStep()
		}
	}

	outcome, _ := g.Outcome()
	for i := range rows {
		rows[i].Value = outcome.RewardFrom(game.Player(rows[i].Player))
	}
	black, white := g.Score()
	result := GameResult{Outcome: outcome, BlackScore: black, WhiteScore: white, Moves: g.MoveCount()}

	if cfg.Verbose {
		log.Printf("[Worker %d] Game %s over after %d moves: %s (%.1f - %.1f)",
			workerID, gameID, result.Moves, outcome, black, white)
	}

	return PlayGameOutcome{
		Completed: true,
		Rows:      rows,
		Game: store.GameRow{
			GameID:       gameID,
			Width:        int32(g.Width()),
			Height:       int32(g.Height()),
			Komi:         g.Komi(),
			Superko:      g.Superko(),
			Moves:        int32(g.MoveCount()),
			Notation:     notation.Format(g),
			BlackScore:   black,
			WhiteScore:   white,
			Winner:       WinnerName(outcome),
			WorkerID:     int32(workerID),
			Seed:         seed,
			StartedAtMs:  startedAt,
			FinishedAtMs: time.Now().UnixMilli(),
			Source:       cfg.source(),
		},
		Result: result,
	}, nil
}

// WinnerName maps an outcome to the GameRow.Winner vocabulary.
func WinnerName(o game.Outcome) string {
	switch o {
	case game.BlackWin:
		return store.WinnerBlack
	case game.WhiteWin:
		return store.WinnerWhite
	}
	return store.WinnerDraw
}

// chooseMove picks uniformly among the legal moves. Pass is left out while
// placements exist and AvoidEarlyPass holds for this move count.
func chooseMove(g *rules.Game, cfg Config, rng *rand.Rand) game.Move {
	moves := g.LegalMoves()
	// LegalMoves lists Pass last.
	if cfg.AvoidEarlyPass && len(moves) > 1 && g.MoveCount()+1 < g.MinMovesBeforePassEnds() {
		moves = moves[:len(moves)-1]
	}
	return moves[rng.Intn(len(moves))]
}

// recordRow encodes g before m is played. Value is filled in once the game
// is over.
func recordRow(g *rules.Game, gameID string, m game.Move, source string) store.TrainingRow {
	w, h := g.Width(), g.Height()
	buf := convert.GameToBytes(g)
	planes := append([]byte(nil), (*buf)...)
	convert.PutBuffer(buf)

	actions := g.LegalActions()
	legal := make([]int32, len(actions))
	for i, a := range actions {
		legal[i] = int32(a)
	}

	return store.TrainingRow{
		GameID:       gameID,
		Turn:         int32(g.MoveCount()),
		Width:        int32(w),
		Height:       int32(h),
		Player:       int32(g.Turn()),
		PlanesFormat: store.PlanesFormat,
		Planes:       planes,
		Legal:        legal,
		Policy:       int32(game.EncodeAction(m, w, h)),
		Source:       source,
	}
}
