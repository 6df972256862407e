package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/baduk/logging"
	"github.com/brensch/baduk/rules"
	"github.com/brensch/baduk/selfplay"
	"github.com/brensch/baduk/store"
)

type counters struct {
	moves atomic.Int64
	games atomic.Int64
}

type runConfig struct {
	outDir         string
	idLogPath      string
	checkpointPath string
	workers        int
	gamesPerFlush  int
	flushEvery     time.Duration
	maxGames       int64
	statsEvery     time.Duration
	game           selfplay.Config

	// Optional outputs.
	hub     *feedHub
	updates chan<- GameUpdate
}

func main() {
	outDir := flag.String("out-dir", getEnvOrDefault("OUT_DIR", "data/selfplay"), "Root directory for training/ and games/ parquet batches")
	width := flag.Int("width", 9, "Board width")
	height := flag.Int("height", 9, "Board height")
	komi := flag.Float64("komi", rules.DefaultKomi, "Komi added to White's score")
	minMoves := flag.Int("min-moves", -1, "Moves before two passes end the game (-1: width*height/2)")
	maxMoves := flag.Int("max-moves", -1, "Hard move limit, 0 for none (-1: width*height*3)")
	superko := flag.Bool("superko", false, "Forbid moves that repeat an earlier position")
	allowEarlyPass := flag.Bool("allow-early-pass", false, "Let random play pass before min-moves is reached")
	workers := flag.Int("workers", getEnvIntOrDefault("WORKERS", 8), "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Number of games per parquet batch")
	flushEvery := flag.Duration("flush-every", 5*time.Minute, "Flush at this interval regardless of buffered games")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after generating this many games (across all workers)")
	verbose := flag.Bool("verbose", false, "Trace every move of worker 0")
	logFormat := flag.String("log-format", getEnvOrDefault("LOG_FORMAT", logging.FormatPretty), "Log format: pretty, json or text")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	useTUI := flag.Bool("tui", false, "Show a live dashboard instead of periodic stats logs")
	listen := flag.String("listen", "", "If set, serve a WebSocket feed of finished games on this address at /ws")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid -log-level: %v", err)
	}

	logOut := os.Stderr
	if *useTUI {
		// Keep logs off the dashboard.
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("Failed to create output dir: %v", err)
		}
		f, err := os.OpenFile(filepath.Join(*outDir, "selfplay.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		logOut = f
		log.SetOutput(f)
	}
	logger, err := logging.New(logOut, *logFormat, level)
	if err != nil {
		log.Fatalf("Invalid -log-format: %v", err)
	}
	slog.SetDefault(logger)

	opts := rules.DefaultOptionsWithKomi(*width, *height, *komi)
	if *minMoves >= 0 {
		opts.MinMovesBeforePassEnds = *minMoves
	}
	if *maxMoves >= 0 {
		opts.MaxMoves = *maxMoves
	}
	opts.Superko = *superko

	cfg := runConfig{
		outDir:         *outDir,
		idLogPath:      filepath.Join(*outDir, "written_games.log"),
		checkpointPath: filepath.Join(*outDir, "checkpoints.jsonl"),
		workers:        *workers,
		gamesPerFlush:  *gamesPerFlush,
		flushEvery:     *flushEvery,
		maxGames:       *maxGames,
		statsEvery:     time.Second,
		game: selfplay.Config{
			Width:          *width,
			Height:         *height,
			Rules:          opts,
			AvoidEarlyPass: !*allowEarlyPass,
			Verbose:        *verbose,
		},
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	if *listen != "" {
		cfg.hub = newFeedHub()
		go cfg.hub.Run(ctx.Done())
		mux := http.NewServeMux()
		mux.Handle("/ws", cfg.hub)
		srv := &http.Server{Addr: *listen, Handler: mux}
		go func() {
			logger.Info("feed listening", "addr", *listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("feed server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	c := &counters{}
	if !*useTUI {
		if err := run(ctx, cfg, c, logger); err != nil {
			logger.Error("self-play failed", "error", err)
			os.Exit(1)
		}
		return
	}

	updates := make(chan GameUpdate, cfg.workers)
	cfg.updates = updates
	runErr := make(chan error, 1)
	go func() {
		runErr <- run(ctx, cfg, c, logger)
		close(updates)
	}()

	p := tea.NewProgram(initialModel(c, updates), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("dashboard failed", "error", err)
	}
	cancel()
	if err := <-runErr; err != nil {
		fmt.Fprintf(os.Stderr, "self-play failed: %v\n", err)
		os.Exit(1)
	}
}

// run plays games on cfg.workers goroutines until ctx is cancelled or
// cfg.maxGames is reached. Unfinished games are saved as checkpoints and
// resumed by the next run.
// playGame is replaced in tests.
var playGame = selfplay.PlayGameWithOptions

func run(ctx context.Context, cfg runConfig, c *counters, logger *slog.Logger) error {
	if cfg.workers <= 0 {
		cfg.workers = 1
	}
	if _, err := rules.NewWithOptions(cfg.game.Width, cfg.game.Height, cfg.game.Rules); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ids, err := store.OpenIDLog(cfg.idLogPath)
	if err != nil {
		return err
	}
	defer ids.Close()

	saved, err := selfplay.LoadCheckpoints(cfg.checkpointPath)
	if err != nil {
		return err
	}
	resumes := make(chan selfplay.InProgressGame, len(saved))
	for _, g := range saved {
		if ids.Has(g.GameID) {
			continue
		}
		resumes <- g
	}
	close(resumes)

	logger.Info("starting self-play",
		"out_dir", cfg.outDir,
		"workers", cfg.workers,
		"board", fmt.Sprintf("%dx%d", cfg.game.Width, cfg.game.Height),
		"komi", cfg.game.Rules.Komi,
		"superko", cfg.game.Rules.Superko,
		"written", ids.Count(),
		"resuming", len(resumes))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeReqs := make(chan gameWriteRequest, cfg.workers*4)
	writerDone := make(chan struct{})
	sink := newGameSink(cfg.outDir, cfg.gamesPerFlush, ids, logger)
	go func() {
		writerLoop(sink, writeReqs, cfg.flushEvery)
		close(writerDone)
	}()

	var (
		mu          sync.Mutex
		checkpoints []selfplay.InProgressGame
		workerWG    sync.WaitGroup
		failOnce    sync.Once
		workerErr   error
	)

	for i := 0; i < cfg.workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			gameCfg := cfg.game
			gameCfg.Verbose = cfg.game.Verbose && workerID == 0
			onStep := func() { c.moves.Add(1) }

			for ctx.Err() == nil {
				var opts selfplay.PlayGameOptions
				if g, ok := <-resumes; ok {
					opts.Resume = &g
				}

				out, err := playGame(ctx, workerID, gameCfg, onStep, opts)
				if err != nil {
					logger.Error("game failed", "worker", workerID, "error", err)
					if opts.Resume != nil {
						continue
					}
					failOnce.Do(func() { workerErr = fmt.Errorf("worker %d: %w", workerID, err) })
					cancel()
					return
				}
				if !out.Completed {
					if out.Checkpoint != nil {
						mu.Lock()
						checkpoints = append(checkpoints, *out.Checkpoint)
						mu.Unlock()
					}
					return
				}

				total := c.games.Add(1)
				if cfg.maxGames > 0 && total >= cfg.maxGames {
					cancel()
				}
				writeReqs <- gameWriteRequest{rows: out.Rows, game: out.Game}
				publishGame(cfg, workerID, out)
			}
		}(i)
	}

	start := time.Now()
	statsEvery := cfg.statsEvery
	if statsEvery <= 0 {
		statsEvery = time.Second
	}
	ticker := time.NewTicker(statsEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown requested; waiting for workers")
			workerWG.Wait()
			close(writeReqs)
			<-writerDone

			// Games never picked up stay queued for the next run.
			for g := range resumes {
				checkpoints = append(checkpoints, g)
			}
			if err := selfplay.SaveCheckpoints(cfg.checkpointPath, checkpoints); err != nil {
				return err
			}
			logger.Info("shutdown complete",
				"games", c.games.Load(),
				"moves", c.moves.Load(),
				"batches", sink.batches,
				"rows", sink.rowsWritten,
				"checkpoints", len(checkpoints))
			return workerErr
		case <-ticker.C:
			stats := currentStats(c, time.Since(start))
			if cfg.updates == nil {
				logger.Info("stats", "games", stats.Games, "moves", stats.Moves,
					"moves_per_sec", strconv.FormatFloat(stats.MovesPerSec, 'f', 2, 64))
			}
			if cfg.hub != nil {
				cfg.hub.PublishStats(stats)
			}
		}
	}
}

func currentStats(c *counters, elapsed time.Duration) feedStats {
	s := feedStats{
		Games:     c.games.Load(),
		Moves:     c.moves.Load(),
		UptimeSec: elapsed.Seconds(),
	}
	if elapsed >= time.Second {
		s.MovesPerSec = float64(s.Moves) / elapsed.Seconds()
	}
	return s
}

func publishGame(cfg runConfig, workerID int, out selfplay.PlayGameOutcome) {
	if cfg.updates != nil {
		// Avoid blocking workers if the dashboard stops consuming.
		select {
		case cfg.updates <- GameUpdate{WorkerID: workerID, GameID: out.Game.GameID, Result: out.Result, Examples: len(out.Rows)}:
		default:
		}
	}
	if cfg.hub != nil {
		cfg.hub.PublishGame(feedGame{
			GameID:     out.Game.GameID,
			WorkerID:   workerID,
			Winner:     out.Game.Winner,
			Moves:      out.Result.Moves,
			BlackScore: out.Result.BlackScore,
			WhiteScore: out.Result.WhiteScore,
			Notation:   out.Game.Notation,
		})
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
