package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"screentext/models"
)

// GormLedger keeps transcripts and run summaries in the database.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger { return &GormLedger{db: db} }

// OpenPostgres connects to dsn. SQL statements are only logged when verbose.
func OpenPostgres(dsn string, verbose bool) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the ledger and operator tables. Each model is migrated
// on its own so a failure on one (usually permissions) is logged and does not
// block the others.
func AutoMigrate(db *gorm.DB, log *slog.Logger) {
	tables := []struct {
		name  string
		model any
	}{
		{"transcripts", &models.Transcript{}},
		{"runs", &models.Run{}},
		{"operators", &models.Operator{}},
		{"refresh_tokens", &models.RefreshToken{}},
	}
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			log.Warn("migration warning", "table", t.name, "err", err)
		}
	}
}

func (l *GormLedger) Done(ctx context.Context, name string) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&models.Transcript{}).
		Where("file_name = ? AND status = ?", name, models.StatusDone).
		Count(&n).Error
	return n > 0, err
}

// Record inserts or replaces the row for t.FileName.
func (l *GormLedger) Record(ctx context.Context, t *models.Transcript) error {
	t.FailedReason = truncate(t.FailedReason, 255)
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "file_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "digest", "fingerprint", "status", "text", "lines",
			"unknowns", "output_path", "error_kind", "failed_reason", "run_id",
		}),
	}).Create(t).Error
}

func (l *GormLedger) SaveRun(ctx context.Context, run *models.Run) error {
	return l.db.WithContext(ctx).Save(run).Error
}

// Filter narrows List results.
type Filter struct {
	Status      string
	UnknownOnly bool
	Limit       int
	Offset      int
}

// List returns transcripts newest first along with the total count matching
// f.
func (l *GormLedger) List(ctx context.Context, f Filter) ([]models.Transcript, int64, error) {
	q := l.db.WithContext(ctx).Model(&models.Transcript{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UnknownOnly {
		q = q.Where("unknowns > 0")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	var out []models.Transcript
	err := q.Order("updated_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

func (l *GormLedger) Get(ctx context.Context, id uint) (models.Transcript, error) {
	var t models.Transcript
	err := l.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, ErrNotFound
	}
	return t, err
}

// Runs returns the most recent run summaries.
func (l *GormLedger) Runs(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []models.Run
	err := l.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
