package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/pkg/store"
)

func main() {
	role := flag.String("role", store.RoleReviewer, "operator role (reviewer or administrator)")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [-role administrator] <username> <password>")
		os.Exit(2)
	}
	username, password := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Verbose, "create_user")
	if cfg.DBDSN == "" {
		log.Error("DB_DSN not set in environment")
		os.Exit(1)
	}
	db, err := store.OpenPostgres(cfg.DBDSN, cfg.Verbose)
	if err != nil {
		log.Error("failed to open db", "err", err)
		os.Exit(1)
	}
	if cfg.DBAutoMigrate {
		store.AutoMigrate(db, log)
	}

	op, err := store.CreateOperator(context.Background(), db, username, password, *role)
	if errors.Is(err, store.ErrOperatorExists) {
		fmt.Printf("operator %s already exists (id=%d)\n", username, op.ID)
		return
	}
	if err != nil {
		log.Error("failed to create operator", "err", err)
		os.Exit(1)
	}
	fmt.Printf("created operator %s id=%d role=%s\n", op.Username, op.ID, op.Role)
}
