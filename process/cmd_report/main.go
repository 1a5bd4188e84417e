package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"screentext/pkg/config"
	"screentext/process/report"
)

func main() {
	limit := flag.Int("limit", 20, "rows to list per section")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.DBDSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	ctx := context.Background()
	db, err := report.Open(ctx, cfg.DBDSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()
	r, err := report.Load(ctx, db, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
	report.Write(os.Stdout, r)
}
