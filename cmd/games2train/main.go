package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brensch/baduk/selfplay"
	"github.com/brensch/baduk/store"
)

func main() {
	inDir := flag.String("in-dir", "", "Self-play root whose games/*.parquet are read")
	outDir := flag.String("out-dir", "", "Root that receives the rebuilt training/*.parquet batches")
	source := flag.String("source", "", "Source written on every row (default: the game's source)")
	flag.Parse()

	if *inDir == "" || *outDir == "" {
		fmt.Fprintln(os.Stderr, "-in-dir and -out-dir are required")
		os.Exit(2)
	}
	if err := convertAll(*inDir, *outDir, *source, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// convertAll rebuilds one training batch per game batch. Games that fail to
// replay are reported and skipped.
func convertAll(inDir, outDir, source string, logw io.Writer) error {
	absIn, _ := filepath.Abs(inDir)
	absOut, _ := filepath.Abs(outDir)
	if absIn == absOut {
		return errors.New("out-dir must be different from in-dir")
	}

	inputs, err := store.BatchFiles(filepath.Join(absIn, store.GamesDir))
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no game batches found")
	}

	written := 0
	for _, inPath := range inputs {
		n, err := convertOne(inPath, absOut, source, logw)
		if err != nil {
			fmt.Fprintf(logw, "convert %s: %v\n", inPath, err)
			continue
		}
		if n > 0 {
			written++
		}
	}
	if written == 0 {
		return errors.New("no output written (no convertible games)")
	}
	return nil
}

func convertOne(inPath, outRoot, source string, logw io.Writer) (int, error) {
	games, err := store.ReadGameRows(inPath)
	if err != nil {
		return 0, err
	}
	rows := make([]store.TrainingRow, 0, 64*len(games))
	for _, g := range games {
		tr, err := selfplay.RowsFromGame(g, source)
		if err != nil {
			fmt.Fprintf(logw, "skip: %v\n", err)
			continue
		}
		rows = append(rows, tr...)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	outPath, err := store.WriteTrainingBatch(outRoot, rows)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(logw, "%s -> %s (%d games, %d rows)\n", filepath.Base(inPath), outPath, len(games), len(rows))
	return len(rows), nil
}
