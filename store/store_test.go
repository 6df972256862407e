package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleTraining(gameID string, n int) []TrainingRow {
	rows := make([]TrainingRow, n)
	for i := range rows {
		rows[i] = TrainingRow{
			GameID:       gameID,
			Turn:         int32(i),
			Width:        5,
			Height:       5,
			Player:       1 - 2*int32(i%2),
			PlanesFormat: PlanesFormat,
			Planes:       []byte{byte(i), 0, 0, 63},
			Legal:        []int32{0, 1, 25},
			Policy:       int32(i % 26),
			Value:        1,
			Source:       "test",
		}
	}
	return rows
}

func TestWriteTrainingBatch_RoundTrip(t *testing.T) {
	root := t.TempDir()
	rows := sampleTraining("g1", 4)

	path, err := WriteTrainingBatch(root, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, TrainingDir) {
		t.Fatalf("path=%s not under training dir", path)
	}
	tmp, _ := filepath.Glob(filepath.Join(root, TrainingDir, "tmp", "*"))
	if len(tmp) != 0 {
		t.Fatalf("tmp files left behind: %v", tmp)
	}

	got, err := ReadTrainingRows(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("rows differ:\n got=%+v\nwant=%+v", got, rows)
	}
}

func TestWriteGameBatch_ReadAll(t *testing.T) {
	root := t.TempDir()
	first := []GameRow{{GameID: "a", Width: 9, Height: 9, Komi: 7.5, Moves: 3, Notation: "9x9:0,0;pass;pass", Winner: WinnerWhite}}
	second := []GameRow{{GameID: "b", Width: 5, Height: 5, Superko: true, Notation: "5x5:", Winner: WinnerDraw, Seed: -3}}
	if _, err := WriteGameBatch(root, first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if _, err := WriteGameBatch(root, second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	got, err := ReadAllGameRows(root)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d want=2", len(got))
	}
	ids := map[string]GameRow{got[0].GameID: got[0], got[1].GameID: got[1]}
	if !reflect.DeepEqual(ids["a"], first[0]) || !reflect.DeepEqual(ids["b"], second[0]) {
		t.Fatalf("rows differ: %+v", got)
	}
}

func TestBatchWriter_Finalize(t *testing.T) {
	root := t.TempDir()
	w, err := NewTrainingWriter(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(w.TmpPath()); err != nil {
		t.Fatalf("tmp file missing: %v", err)
	}

	if err := w.WriteRows(sampleTraining("g1", 3)); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.NoteGameWritten()
	if err := w.WriteRows(sampleTraining("g2", 2)); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.NoteGameWritten()
	if w.BufferedRows() != 5 || w.BufferedGames() != 2 {
		t.Fatalf("buffered rows=%d games=%d", w.BufferedRows(), w.BufferedGames())
	}

	out, rows, games, err := w.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if out != w.OutPath() || rows != 5 || games != 2 {
		t.Fatalf("finalize=%s,%d,%d", out, rows, games)
	}
	if _, err := os.Stat(w.TmpPath()); !os.IsNotExist(err) {
		t.Fatalf("tmp file still present: %v", err)
	}
	got, err := ReadTrainingRows(out)
	if err != nil || len(got) != 5 {
		t.Fatalf("read back rows=%d err=%v", len(got), err)
	}

	if err := w.WriteRows(sampleTraining("g3", 1)); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("write after finalize err=%v", err)
	}
	if out, _, _, err := w.Finalize(); out != "" || err != nil {
		t.Fatalf("second finalize=%q,%v", out, err)
	}
}

func TestBatchWriter_EmptyFinalizeRemovesFile(t *testing.T) {
	root := t.TempDir()
	w, err := NewGameWriter(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	out, rows, _, err := w.Finalize()
	if err != nil || out != "" || rows != 0 {
		t.Fatalf("finalize=%q,%d,%v", out, rows, err)
	}
	if _, err := os.Stat(w.TmpPath()); !os.IsNotExist(err) {
		t.Fatalf("empty tmp file kept")
	}
	files, _ := BatchFiles(filepath.Join(root, GamesDir))
	if len(files) != 0 {
		t.Fatalf("empty batch published: %v", files)
	}
}

func TestIDLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "written.log")
	l, err := OpenIDLog(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.AddMany([]string{"a", "b", "", "a"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !l.Has("a") || !l.Has("b") || l.Has("c") || l.Count() != 2 {
		t.Fatalf("has a=%v b=%v c=%v count=%d", l.Has("a"), l.Has("b"), l.Has("c"), l.Count())
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.AddMany([]string{"c"}); !errors.Is(err, ErrLogClosed) {
		t.Fatalf("add after close err=%v", err)
	}

	reopened, err := OpenIDLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Count() != 2 || !reopened.Has("b") {
		t.Fatalf("reopened count=%d", reopened.Count())
	}
}
