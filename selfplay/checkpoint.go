package selfplay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SaveCheckpoints writes games as JSON lines, replacing path atomically. An
// empty slice removes the file.
func SaveCheckpoints(path string, games []InProgressGame) error {
	if len(games) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove checkpoints: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create checkpoint file: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range games {
		if err := enc.Encode(&games[i]); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("encode checkpoint %s: %w", games[i].GameID, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("flush checkpoints: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync checkpoints: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close checkpoints: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename checkpoints: %w", err)
	}
	return nil
}

// LoadCheckpoints reads a file written by SaveCheckpoints. A missing file
// yields no games.
func LoadCheckpoints(path string) ([]InProgressGame, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open checkpoints: %w", err)
	}
	defer f.Close()

	var out []InProgressGame
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var g InProgressGame
		if err := dec.Decode(&g); err != nil {
			return out, fmt.Errorf("decode checkpoint %d: %w", len(out), err)
		}
		out = append(out, g)
	}
	return out, nil
}
