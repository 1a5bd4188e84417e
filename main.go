package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"screentext/pkg/app"
	"screentext/pkg/config"
	"screentext/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Verbose, "api")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-insecure-secret-change" // development fallback
		log.Warn("JWT_SECRET not set, using development secret")
	}

	// `screentext migrate` runs AutoMigrate and seeding then exits. Useful for
	// CI or manual DB setup.
	migrateOnly := len(os.Args) > 1 && os.Args[1] == "migrate"
	if migrateOnly {
		cfg.DBAutoMigrate = true
	}

	deps, err := app.Build(context.Background(), cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	s := newServer(deps)
	if err := s.initDB(context.Background()); err != nil {
		log.Error("database init failed", "err", err)
		os.Exit(1)
	}
	if migrateOnly {
		if deps.DB == nil {
			log.Error("migrate needs DB_DSN")
			os.Exit(1)
		}
		fmt.Println("migration and seeding completed")
		return
	}

	r := gin.Default()
	setupRoutes(r, s)
	log.Info("listening", "addr", cfg.HTTPAddr, "db", deps.DB != nil, "cache", deps.Cache != nil)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
