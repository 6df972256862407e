// Package store persists self-play output as Parquet.
//
// Two row kinds are written side by side under an output root:
//
//	<root>/training/batch_<ns>.parquet  one TrainingRow per position
//	<root>/games/batch_<ns>.parquet     one GameRow per finished game
//
// Files are written under <dir>/tmp and renamed into place, so readers never
// see a partial file.
package store

const (
	TrainingDir = "training"
	GamesDir    = "games"

	TrainingSchema = "baduk_training_row_v1"
	GameSchema     = "baduk_game_row_v1"

	// PlanesFormat names the encoding stored in TrainingRow.Planes.
	PlanesFormat = "planes17_f32le"
)

// TrainingRow is one position from a self-play game.
//
// Planes holds the network input for the position, Policy the action index
// that was played (row*width+col, width*height for pass) and Value the final
// result from the perspective of the player to move: +1 win, -1 loss, 0 draw.
type TrainingRow struct {
	GameID       string  `parquet:"game_id,dict"`
	Turn         int32   `parquet:"turn"`
	Width        int32   `parquet:"width"`
	Height       int32   `parquet:"height"`
	Player       int32   `parquet:"player"`
	PlanesFormat string  `parquet:"planes_format,dict"`
	Planes       []byte  `parquet:"planes"`
	Legal        []int32 `parquet:"legal"`
	Policy       int32   `parquet:"policy"`
	Value        float32 `parquet:"value"`
	Source       string  `parquet:"source,dict"`
}

// GameRow summarises one finished game. Notation replays the full game.
type GameRow struct {
	GameID       string  `parquet:"game_id"`
	Width        int32   `parquet:"width"`
	Height       int32   `parquet:"height"`
	Komi         float64 `parquet:"komi"`
	Superko      bool    `parquet:"superko"`
	Moves        int32   `parquet:"moves"`
	Notation     string  `parquet:"notation,zstd"`
	BlackScore   float64 `parquet:"black_score"`
	WhiteScore   float64 `parquet:"white_score"`
	Winner       string  `parquet:"winner,dict"`
	WorkerID     int32   `parquet:"worker_id"`
	Seed         int64   `parquet:"seed"`
	StartedAtMs  int64   `parquet:"started_at_ms"`
	FinishedAtMs int64   `parquet:"finished_at_ms"`
	Source       string  `parquet:"source,dict"`
}

// Winner values stored in GameRow.Winner.
const (
	WinnerBlack = "black"
	WinnerWhite = "white"
	WinnerDraw  = "draw"
)
