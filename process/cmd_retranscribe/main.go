package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"screentext/pkg/app"
	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/process/batch"
	"screentext/process/report"
)

// Re-runs recognition for ledger rows that failed, still have unknown glyphs
// or were produced by an older template table. Screenshots are looked up in
// -dir, which defaults to ARCHIVE_DIR (or ASSETS_DIR when no archive is set).
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	def := cfg.ArchiveDir
	if def == "" {
		def = cfg.AssetsDir
	}
	dir := flag.String("dir", def, "directory holding the screenshots")
	dry := flag.Bool("dry-run", false, "only list the files that would be transcribed again")
	flag.Parse()
	if cfg.DBDSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}

	log := logging.New(cfg.Verbose, "retranscribe")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	db, err := report.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Error("open db", "err", err)
		os.Exit(1)
	}
	names, err := report.Stale(ctx, db, deps.Table.Fingerprint())
	db.Close()
	if err != nil {
		log.Error("list stale transcripts", "err", err)
		os.Exit(1)
	}

	var files []string
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(*dir, n)); err != nil {
			log.Warn("screenshot not found, skipping", "file", n, "dir", *dir)
			continue
		}
		files = append(files, n)
	}
	if *dry {
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	r := &batch.Runner{
		Recognizer: deps.Recognizer,
		Ledger:     deps.Ledger,
		Cache:      deps.Cache,
		AssetsDir:  *dir,
		OutputDir:  cfg.OutputDir,
		Workers:    cfg.Workers,
		Log:        log,
		Force:      true,
	}
	if _, err := r.RunFiles(ctx, files); err != nil {
		log.Error("run aborted", "err", err)
		deps.Close()
		os.Exit(1)
	}
}
