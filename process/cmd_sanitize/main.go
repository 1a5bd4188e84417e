package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/pkg/store"
	"screentext/process/sanitize"
)

func main() {
	dryRun := flag.Bool("dry-run", true, "Don't perform destructive actions; show what would be done")
	yes := flag.Bool("yes", false, "Confirm destructive action (required to actually truncate)")
	failedOnly := flag.Bool("failed-only", false, "Only delete failed transcript rows")
	tables := flag.String("tables", strings.Join(sanitize.DefaultTables, ","), "Comma-separated list of tables to truncate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Verbose, "sanitize")
	if cfg.DBDSN == "" {
		log.Error("DB_DSN must be set to run sanitize")
		os.Exit(2)
	}
	gdb, err := store.OpenPostgres(cfg.DBDSN, cfg.Verbose)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	opts := sanitize.Options{
		DryRun:     *dryRun,
		Yes:        *yes,
		FailedOnly: *failedOnly,
		Tables:     strings.Split(*tables, ","),
	}
	if err := sanitize.Run(context.Background(), gdb, opts, os.Stdout, log); err != nil {
		log.Error("sanitize failed", "err", err)
		os.Exit(1)
	}
}
