package main

import (
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/brensch/baduk/store"
)

// DBCache keeps one in-memory DuckDB connection with a games view over the
// Parquet files, reopened once it is older than refreshRate.
type DBCache struct {
	roots       []string
	refreshRate time.Duration

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time

	gamesIndex []GameSummary
}

func NewDBCache(roots []string, refreshRate time.Duration) *DBCache {
	return &DBCache{
		roots:       roots,
		refreshRate: refreshRate,
	}
}

// Get returns the cached connection, refreshing it if stale.
func (c *DBCache) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

func (c *DBCache) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.refreshLocked()
	return err
}

func (c *DBCache) refreshLocked() (*sql.DB, error) {
	start := time.Now()
	newDB, err := openGamesDB(c.roots)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = newDB
	c.lastRefresh = time.Now()
	c.gamesIndex = nil
	log.Printf("DBCache refreshed in %v", time.Since(start))
	return c.db, nil
}

// GamesIndex returns every game summary, building the index on first use
// after a refresh.
func (c *DBCache) GamesIndex(ctx context.Context) ([]GameSummary, error) {
	c.mu.RLock()
	if c.gamesIndex != nil && c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		idx := c.gamesIndex
		c.mu.RUnlock()
		return idx, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil || time.Since(c.lastRefresh) >= c.refreshRate {
		if _, err := c.refreshLocked(); err != nil {
			return nil, err
		}
	}
	if c.gamesIndex != nil {
		return c.gamesIndex, nil
	}

	start := time.Now()
	games, err := queryAllGames(ctx, c.db, c.roots)
	if err != nil {
		return nil, err
	}
	c.gamesIndex = games
	log.Printf("Games index rebuilt: %d games in %v", len(games), time.Since(start))
	return c.gamesIndex, nil
}

func (c *DBCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// gameGlobs lists one <root>/games/*.parquet pattern per root that has at
// least one finished file. read_parquet fails on a glob with no matches.
func gameGlobs(roots []string) []string {
	var globs []string
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		glob := filepath.Join(root, store.GamesDir, "*.parquet")
		if matches, _ := filepath.Glob(glob); len(matches) == 0 {
			continue
		}
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}
	return globs
}

func openGamesDB(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := gameGlobs(roots)
	var sqlText string
	if len(globs) == 0 {
		sqlText = `CREATE OR REPLACE VIEW games AS
			SELECT * FROM (
				SELECT
					NULL::VARCHAR AS game_id,
					NULL::INTEGER AS width,
					NULL::INTEGER AS height,
					NULL::DOUBLE AS komi,
					NULL::BOOLEAN AS superko,
					NULL::INTEGER AS moves,
					NULL::VARCHAR AS notation,
					NULL::DOUBLE AS black_score,
					NULL::DOUBLE AS white_score,
					NULL::VARCHAR AS winner,
					NULL::INTEGER AS worker_id,
					NULL::BIGINT AS seed,
					NULL::BIGINT AS started_at_ms,
					NULL::BIGINT AS finished_at_ms,
					NULL::VARCHAR AS source,
					NULL::VARCHAR AS filename
			) WHERE 1=0`
	} else {
		sqlText = `CREATE OR REPLACE VIEW games AS
			SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)`
	}
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

const summaryColumns = `game_id, width, height, komi, superko, moves, winner,
	black_score, white_score, worker_id, started_at_ms, finished_at_ms, source, filename`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(s rowScanner, roots []string) (GameSummary, error) {
	var g GameSummary
	var file string
	if err := s.Scan(&g.GameID, &g.Width, &g.Height, &g.Komi, &g.Superko, &g.Moves, &g.Winner,
		&g.BlackScore, &g.WhiteScore, &g.WorkerID, &g.StartedAtMs, &g.FinishedAtMs, &g.Source, &file); err != nil {
		return GameSummary{}, err
	}
	g.SourceFile = makeRelativeToRoots(file, roots)
	return g, nil
}

func queryAllGames(ctx context.Context, db *sql.DB, roots []string) ([]GameSummary, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM games`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]GameSummary, 0, 1024)
	for rows.Next() {
		g, err := scanSummary(rows, roots)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// queryGame returns sql.ErrNoRows for an unknown id.
func queryGame(ctx context.Context, db *sql.DB, roots []string, gameID string) (GameDetail, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+`, notation FROM games WHERE game_id = ? LIMIT 1`, gameID)
	var d GameDetail
	var file string
	g := &d.GameSummary
	if err := row.Scan(&g.GameID, &g.Width, &g.Height, &g.Komi, &g.Superko, &g.Moves, &g.Winner,
		&g.BlackScore, &g.WhiteScore, &g.WorkerID, &g.StartedAtMs, &g.FinishedAtMs, &g.Source, &file,
		&d.Notation); err != nil {
		return GameDetail{}, err
	}
	g.SourceFile = makeRelativeToRoots(file, roots)
	return d, nil
}

func queryStats(ctx context.Context, db *sql.DB, fromMs, toMs, bucketMs int64) (StatsTotals, []StatsPoint, error) {
	var t StatsTotals
	err := db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(moves), 0)::BIGINT,
			COALESCE(AVG(moves), 0)::DOUBLE,
			COUNT(*) FILTER (WHERE winner = ?),
			COUNT(*) FILTER (WHERE winner = ?),
			COUNT(*) FILTER (WHERE winner = ?)
		FROM games
		WHERE finished_at_ms >= ? AND finished_at_ms <= ?`,
		store.WinnerBlack, store.WinnerWhite, store.WinnerDraw, fromMs, toMs,
	).Scan(&t.Games, &t.TotalMoves, &t.AvgMoves, &t.BlackWins, &t.WhiteWins, &t.Draws)
	if err != nil {
		return StatsTotals{}, nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT
			(? + floor((finished_at_ms - ?)::DOUBLE / ?::DOUBLE) * ?)::BIGINT AS bucket,
			COUNT(*),
			(SUM(moves))::BIGINT,
			COUNT(*) FILTER (WHERE winner = ?),
			COUNT(*) FILTER (WHERE winner = ?),
			COUNT(*) FILTER (WHERE winner = ?)
		FROM games
		WHERE finished_at_ms >= ? AND finished_at_ms <= ?
		GROUP BY bucket
		ORDER BY bucket ASC`,
		fromMs, fromMs, bucketMs, bucketMs,
		store.WinnerBlack, store.WinnerWhite, store.WinnerDraw, fromMs, toMs)
	if err != nil {
		return StatsTotals{}, nil, err
	}
	defer rows.Close()

	var points []StatsPoint
	for rows.Next() {
		var p StatsPoint
		if err := rows.Scan(&p.TMs, &p.Games, &p.TotalMoves, &p.BlackWins, &p.WhiteWins, &p.Draws); err != nil {
			return StatsTotals{}, nil, err
		}
		points = append(points, p)
	}
	return t, points, rows.Err()
}

func normalizeSort(sortKey, sortDir string) (string, string) {
	sk := strings.ToLower(strings.TrimSpace(sortKey))
	sd := strings.ToLower(strings.TrimSpace(sortDir))
	if sd != "asc" && sd != "desc" {
		sd = "desc"
	}
	switch sk {
	case "time", "finished", "finished_at_ms":
		sk = "finished_at_ms"
	case "started", "started_at_ms":
		sk = "started_at_ms"
	case "id", "game", "game_id":
		sk = "game_id"
	case "moves":
		sk = "moves"
	case "winner":
		sk = "winner"
	case "size", "width":
		sk = "size"
	default:
		sk = "finished_at_ms"
		sd = "desc"
	}
	return sk, sd
}

// queryGamesFromIndex sorts a copy of the index and returns one page of it
// plus the total count.
func queryGamesFromIndex(index []GameSummary, limit, offset int, sortKey, sortDir string) ([]GameSummary, int64) {
	sk, sd := normalizeSort(sortKey, sortDir)
	games := make([]GameSummary, len(index))
	copy(games, index)

	less := func(a, b GameSummary) bool {
		switch sk {
		case "started_at_ms":
			return a.StartedAtMs < b.StartedAtMs
		case "game_id":
			return a.GameID < b.GameID
		case "moves":
			return a.Moves < b.Moves
		case "winner":
			return a.Winner < b.Winner
		case "size":
			return a.Width*a.Height < b.Width*b.Height
		}
		return a.FinishedAtMs < b.FinishedAtMs
	}
	sort.SliceStable(games, func(i, j int) bool {
		if sd == "asc" {
			return less(games[i], games[j])
		}
		return less(games[j], games[i])
	})

	total := int64(len(games))
	if offset >= len(games) {
		return []GameSummary{}, total
	}
	end := len(games)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return games[offset:end], total
}

func makeRelativeToRoots(filename string, roots []string) string {
	fn := strings.TrimSpace(filename)
	if fn == "" {
		return ""
	}
	best := fn
	for _, r := range roots {
		root := strings.TrimSpace(r)
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(root, fn)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if cand := filepath.ToSlash(rel); len(cand) < len(best) {
			best = cand
		}
	}
	return best
}
