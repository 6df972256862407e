package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

func writerOptions(schema string) []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.SkipPageBounds("planes"),
		parquet.KeyValueMetadata("schema", schema),
	}
}

func batchName() string {
	return fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
}

// writeBatchAtomic writes rows to outDir/tmp and renames the file into
// outDir. It returns the final path.
func writeBatchAtomic[T any](outDir, schema string, rows []T) (string, error) {
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows, writerOptions(schema)...); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// WriteTrainingBatch writes rows as one file under <root>/training.
func WriteTrainingBatch(root string, rows []TrainingRow) (string, error) {
	return writeBatchAtomic(filepath.Join(root, TrainingDir), TrainingSchema, rows)
}

// WriteGameBatch writes rows as one file under <root>/games.
func WriteGameBatch(root string, rows []GameRow) (string, error) {
	return writeBatchAtomic(filepath.Join(root, GamesDir), GameSchema, rows)
}

func ReadTrainingRows(path string) ([]TrainingRow, error) {
	rows, err := parquet.ReadFile[TrainingRow](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func ReadGameRows(path string) ([]GameRow, error) {
	rows, err := parquet.ReadFile[GameRow](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// BatchFiles lists the finished Parquet files in dir, oldest first. Files
// still under dir/tmp are not included.
func BatchFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadAllGameRows reads every finished game file under <root>/games.
func ReadAllGameRows(root string) ([]GameRow, error) {
	files, err := BatchFiles(filepath.Join(root, GamesDir))
	if err != nil {
		return nil, err
	}
	var out []GameRow
	for _, f := range files {
		rows, err := ReadGameRows(f)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
