package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"screentext/pkg/app"
	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/process/batch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.AssetsDir, "dir", cfg.AssetsDir, "directory to scan for screenshots")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for transcripts")
	flag.StringVar(&cfg.TemplateFile, "templates", cfg.TemplateFile, "template definition file")
	flag.StringVar(&cfg.DumpDir, "dump", cfg.DumpDir, "write unknown glyphs as PNG into this directory")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker pool size")
	flag.BoolVar(&cfg.FlushTrailing, "flush-trailing", cfg.FlushTrailing, "emit a glyph still open at the end of a row")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "verbose per-file logging")
	flag.StringVar(&cfg.ArchiveDir, "archive", cfg.ArchiveDir, "move transcribed screenshots into this directory")
	watch := flag.Bool("watch", false, "keep running and transcribe new screenshots as they appear")
	noDB := flag.Bool("no-db", false, "use transcript files as the ledger even when DB_DSN is set")
	flag.Parse()
	if *noDB {
		cfg.DBDSN = ""
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(cfg.Verbose, "batch")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	r := &batch.Runner{
		Recognizer: deps.Recognizer,
		Ledger:     deps.Ledger,
		Cache:      deps.Cache,
		AssetsDir:  cfg.AssetsDir,
		OutputDir:  cfg.OutputDir,
		ArchiveDir: cfg.ArchiveDir,
		Workers:    cfg.Workers,
		Log:        log,
	}
	if *watch {
		_, err = r.Watch(ctx)
	} else {
		_, err = r.Run(ctx)
	}
	if err != nil {
		log.Error("run aborted", "err", err)
		deps.Close()
		os.Exit(1)
	}
}
