// Package app wires configuration into the recognizer and its storage
// backends for the command-line entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"screentext/pkg/cache"
	"screentext/pkg/config"
	"screentext/pkg/ocr"
	"screentext/pkg/store"
)

// Deps holds everything a command needs. DB and Cache are nil when not
// configured.
type Deps struct {
	Config     *config.Config
	Log        *slog.Logger
	Table      *ocr.TemplateTable
	Recognizer *ocr.Recognizer
	DB         *gorm.DB
	Ledger     store.Ledger
	Cache      cache.Cache

	closers []func() error
}

// Build loads templates, opens the database and cache when configured and
// returns the wired dependencies. Template errors are fatal.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Deps, error) {
	d := &Deps{Config: cfg, Log: log}
	table, err := ocr.LoadTemplateFile(cfg.TemplateFile, log)
	if err != nil {
		return nil, err
	}
	d.Table = table
	log.Info("templates loaded", "file", cfg.TemplateFile, "count", table.Len(), "fingerprint", table.Fingerprint()[:12])

	rec, err := ocr.NewRecognizer(table, cfg.Options(), log)
	if err != nil {
		return nil, err
	}
	if cfg.DumpDir != "" {
		rec.Dumper = &ocr.DirDumper{Dir: cfg.DumpDir}
	}
	d.Recognizer = rec

	d.Ledger = store.FileLedger{Dir: cfg.OutputDir}
	if cfg.DBDSN != "" {
		db, err := store.OpenPostgres(cfg.DBDSN, cfg.Verbose)
		if err != nil {
			return nil, err
		}
		if cfg.DBAutoMigrate {
			store.AutoMigrate(db, log)
		}
		d.DB = db
		d.Ledger = store.NewGormLedger(db)
		if sqlDB, err := db.DB(); err == nil {
			d.closers = append(d.closers, sqlDB.Close)
		}
	}

	if cfg.RedisURL != "" {
		r, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("cache: %w", err)
		}
		d.Cache = r
		d.closers = append(d.closers, r.Close)
	}
	return d, nil
}

// Close releases database and cache connections.
func (d *Deps) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			d.Log.Warn("close", "err", err)
		}
	}
	d.closers = nil
}
