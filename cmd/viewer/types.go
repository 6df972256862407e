package main

// GameSummary is one row of the games list.
type GameSummary struct {
	GameID       string  `json:"game_id"`
	Width        int32   `json:"width"`
	Height       int32   `json:"height"`
	Komi         float64 `json:"komi"`
	Superko      bool    `json:"superko"`
	Moves        int32   `json:"moves"`
	Winner       string  `json:"winner"`
	BlackScore   float64 `json:"black_score"`
	WhiteScore   float64 `json:"white_score"`
	WorkerID     int32   `json:"worker_id"`
	StartedAtMs  int64   `json:"started_at_ms"`
	FinishedAtMs int64   `json:"finished_at_ms"`
	Source       string  `json:"source"`
	SourceFile   string  `json:"file"`
}

type GamesResponse struct {
	Total int64         `json:"total"`
	Games []GameSummary `json:"games"`
}

// GameDetail is a game with every position reached, start included.
type GameDetail struct {
	GameSummary
	Notation string  `json:"notation"`
	Frames   []Frame `json:"frames"`
}

type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Frame is the board after Move moves. Board[row][col] holds 1 for Black,
// -1 for White and 0 for empty.
type Frame struct {
	Move        int      `json:"move"`
	Played      string   `json:"played,omitempty"`
	Player      string   `json:"player,omitempty"`
	ToPlay      string   `json:"to_play"`
	Board       [][]int8 `json:"board"`
	Captured    int      `json:"captured"`
	Ko          *Point   `json:"ko,omitempty"`
	BlackStones int      `json:"black_stones"`
	WhiteStones int      `json:"white_stones"`
}

type StatsTotals struct {
	Games      int64   `json:"games"`
	TotalMoves int64   `json:"total_moves"`
	AvgMoves   float64 `json:"avg_moves"`
	BlackWins  int64   `json:"black_wins"`
	WhiteWins  int64   `json:"white_wins"`
	Draws      int64   `json:"draws"`
}

type StatsPoint struct {
	TMs        int64 `json:"t_ms"`
	Games      int64 `json:"games"`
	TotalMoves int64 `json:"total_moves"`
	BlackWins  int64 `json:"black_wins"`
	WhiteWins  int64 `json:"white_wins"`
	Draws      int64 `json:"draws"`
}

type StatsResponse struct {
	FromMs   int64        `json:"from_ms"`
	ToMs     int64        `json:"to_ms"`
	BucketMs int64        `json:"bucket_ms"`
	Totals   StatsTotals  `json:"totals"`
	Points   []StatsPoint `json:"points"`
}
