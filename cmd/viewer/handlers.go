package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Server holds shared state for the HTTP handlers.
type Server struct {
	roots   []string
	dbCache *DBCache
}

func NewServer(roots []string, refresh time.Duration) *Server {
	return &Server{
		roots:   roots,
		dbCache: NewDBCache(roots, refresh),
	}
}

func (s *Server) Close() error { return s.dbCache.Close() }

// Router serves the JSON API, plus static for every other path when it is
// not nil. Cross-origin GETs are allowed.
func (s *Server) Router(static http.Handler) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/games", s.handleGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", s.handleGame).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	if static != nil {
		r.PathPrefix("/").Methods(http.MethodGet, http.MethodHead).Handler(static)
	}
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	index, err := s.dbCache.GamesIndex(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	limit := parseIntQuery(r, "limit", 200)
	offset := parseIntQuery(r, "offset", 0)
	sortKey := strings.TrimSpace(r.URL.Query().Get("sort"))
	sortDir := strings.TrimSpace(r.URL.Query().Get("dir"))

	games, total := queryGamesFromIndex(index, limit, offset, sortKey, sortDir)
	writeJSON(w, GamesResponse{Total: total, Games: games})
}

// handleGame serves /api/games/{id} with every position of the game.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	db, err := s.dbCache.Get()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	detail, err := queryGame(r.Context(), db, s.roots, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	frames, err := replayFrames(detail.Notation, detail.Komi, detail.Superko)
	if err != nil {
		http.Error(w, fmt.Sprintf("replay %s: %v", gameID, err), http.StatusUnprocessableEntity)
		return
	}
	detail.Frames = frames
	writeJSON(w, detail)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	const defaultBucketMs = 5 * 60 * 1000
	fromMs := parseInt64Query(r, "from_ms", 0)
	toMs := parseInt64Query(r, "to_ms", 0)
	bucketMs := parseInt64Query(r, "bucket_ms", defaultBucketMs)
	if bucketMs <= 0 {
		bucketMs = defaultBucketMs
	}
	if fromMs <= 0 || toMs <= 0 || toMs <= fromMs {
		// Default: last 24h.
		nowMs := time.Now().UnixMilli()
		toMs = nowMs
		fromMs = nowMs - (24 * time.Hour).Milliseconds()
	}

	db, err := s.dbCache.Get()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	totals, points, err := queryStats(r.Context(), db, fromMs, toMs, bucketMs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []StatsPoint{}
	}
	writeJSON(w, StatsResponse{FromMs: fromMs, ToMs: toMs, BucketMs: bucketMs, Totals: totals, Points: points})
}
