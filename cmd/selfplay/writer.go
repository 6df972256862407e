package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brensch/baduk/store"
)

type gameWriteRequest struct {
	rows []store.TrainingRow
	game store.GameRow
}

// gameSink streams finished games into one training and one games batch
// file, rotating both every gamesPerFlush games. Flushed IDs go to the ID
// log so checkpoints of already written games are not resumed.
type gameSink struct {
	root          string
	gamesPerFlush int
	ids           *store.IDLog
	logger        *slog.Logger

	training *store.BatchWriter[store.TrainingRow]
	games    *store.BatchWriter[store.GameRow]
	pending  []string

	batches     int
	rowsWritten int
}

func newGameSink(root string, gamesPerFlush int, ids *store.IDLog, logger *slog.Logger) *gameSink {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}
	return &gameSink{root: root, gamesPerFlush: gamesPerFlush, ids: ids, logger: logger}
}

func (s *gameSink) open() error {
	if s.training != nil {
		return nil
	}
	tw, err := store.NewTrainingWriter(s.root)
	if err != nil {
		return err
	}
	gw, err := store.NewGameWriter(s.root)
	if err != nil {
		_, _, _, _ = tw.Finalize()
		return err
	}
	s.training, s.games = tw, gw
	return nil
}

func (s *gameSink) add(req gameWriteRequest) error {
	if len(req.rows) == 0 {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}
	if err := s.training.WriteRows(req.rows); err != nil {
		return fmt.Errorf("game %s: %w", req.game.GameID, err)
	}
	if err := s.games.WriteRows([]store.GameRow{req.game}); err != nil {
		return fmt.Errorf("game %s: %w", req.game.GameID, err)
	}
	s.training.NoteGameWritten()
	s.games.NoteGameWritten()
	s.pending = append(s.pending, req.game.GameID)

	if len(s.pending) >= s.gamesPerFlush {
		return s.flush("count")
	}
	return nil
}

func (s *gameSink) flush(reason string) error {
	if s.training == nil {
		return nil
	}
	tw, gw := s.training, s.games
	s.training, s.games = nil, nil

	trainPath, rows, games, err := tw.Finalize()
	if err != nil {
		_, _, _, _ = gw.Finalize()
		return fmt.Errorf("flush training (%s): %w", reason, err)
	}
	gamePath, _, _, err := gw.Finalize()
	if err != nil {
		return fmt.Errorf("flush games (%s): %w", reason, err)
	}

	if s.ids != nil {
		if err := s.ids.AddMany(s.pending); err != nil {
			// Parquet is already in place; only resume dedupe is affected.
			s.logger.Warn("id log append failed", "reason", reason, "error", err)
		}
	}
	s.pending = s.pending[:0]
	if rows > 0 {
		s.batches++
		s.rowsWritten += rows
		s.logger.Info("parquet flush ok",
			"reason", reason, "games", games, "rows", rows,
			"training", trainPath, "games_file", gamePath)
	}
	return nil
}

// writerLoop drains in until it is closed, flushing on count, on the
// interval and once more at the end.
func writerLoop(sink *gameSink, in <-chan gameWriteRequest, flushEvery time.Duration) {
	if flushEvery <= 0 {
		flushEvery = time.Hour
	}
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case req, ok := <-in:
			if !ok {
				if err := sink.flush("final"); err != nil {
					sink.logger.Error("parquet final flush failed", "error", err)
				}
				return
			}
			if err := sink.add(req); err != nil {
				sink.logger.Error("parquet write failed", "error", err)
			}
		case <-ticker.C:
			if err := sink.flush("ticker"); err != nil {
				sink.logger.Error("parquet flush failed", "error", err)
			}
		}
	}
}
