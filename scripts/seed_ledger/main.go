package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"screentext/models"
	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/pkg/ocr"
	"screentext/pkg/store"
)

// Records transcripts written by file-only runs in the database ledger, so a
// later run with DB_DSN does not transcribe them again. The screenshot name
// is the transcript name with .png in place of .txt.
func main() {
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN not set in env")
	}
	lg := logging.New(cfg.Verbose, "seed_ledger")
	db, err := store.OpenPostgres(cfg.DBDSN, cfg.Verbose)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if cfg.DBAutoMigrate {
		store.AutoMigrate(db, lg)
	}
	ledger := store.NewGormLedger(db)
	ctx := context.Background()

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		log.Fatalf("read dir: %v", err)
	}
	seeded, skipped := 0, 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		image := strings.TrimSuffix(e.Name(), ".txt") + ".png"
		if done, err := ledger.Done(ctx, image); err == nil && done {
			skipped++
			continue
		}
		full := filepath.Join(cfg.OutputDir, e.Name())
		b, err := os.ReadFile(full)
		if err != nil {
			lg.Warn("read transcript", "file", full, "err", err)
			continue
		}
		text := string(b)
		unknowns := strings.Count(text, string(rune(ocr.UnknownChar))) // approximate when the font has a real '?' glyph
		if *dry {
			fmt.Printf("DRY: would record %s lines=%d unknowns=%d\n", image, len(ocr.SplitLines(text)), unknowns)
			continue
		}
		t := &models.Transcript{
			FileName:   image,
			Status:     models.StatusDone,
			Text:       text,
			Lines:      len(ocr.SplitLines(text)),
			Unknowns:   unknowns,
			OutputPath: full,
			RunID:      "seed",
		}
		if err := ledger.Record(ctx, t); err != nil {
			lg.Warn("record", "file", image, "err", err)
			continue
		}
		seeded++
	}
	fmt.Printf("seeded=%d already_recorded=%d\n", seeded, skipped)
}
