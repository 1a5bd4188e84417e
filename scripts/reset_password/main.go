package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"screentext/pkg/config"
	"screentext/pkg/store"
)

func main() {
	username := flag.String("username", "", "operator to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("--username and --password are required")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := store.OpenPostgres(cfg.DBDSN, cfg.Verbose)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := store.SetOperatorPassword(context.Background(), db, *username, *password); err != nil {
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("Password reset for operator %s\n", *username)
}
