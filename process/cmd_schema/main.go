package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"screentext/pkg/config"
	"screentext/process/schema"
)

func main() {
	tables := flag.String("tables", strings.Join(schema.Tables, ","), "Comma-separated list of tables to inspect")
	flag.Parse()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	entries, err := schema.Inspect(context.Background(), cfg.DBDSN, strings.Split(*tables, ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect failed: %v\n", err)
		os.Exit(1)
	}
	schema.Write(os.Stdout, entries)
}
