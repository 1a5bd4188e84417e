// Package sanitize resets the transcript ledger so screenshots are picked up
// again by the next batch run.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"screentext/models"
)

// Options of one sanitize run. Nothing is changed unless DryRun is false and
// Yes is true.
type Options struct {
	DryRun bool
	Yes    bool
	// FailedOnly deletes only failed transcript rows instead of truncating.
	FailedOnly bool
	Tables     []string
}

var DefaultTables = []string{"transcripts", "runs"}

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Run truncates opts.Tables (or deletes failed rows) and describes what it
// does on out.
func Run(ctx context.Context, gdb *gorm.DB, opts Options, out io.Writer, log *slog.Logger) error {
	if opts.FailedOnly {
		var n int64
		if err := gdb.WithContext(ctx).Model(&models.Transcript{}).Where("status = ?", models.StatusFailed).Count(&n).Error; err != nil {
			return err
		}
		fmt.Fprintf(out, "failed transcript rows: %d\n", n)
		if !confirmed(opts, out) {
			return nil
		}
		res := gdb.WithContext(ctx).Where("status = ?", models.StatusFailed).Delete(&models.Transcript{})
		if res.Error != nil {
			return fmt.Errorf("delete failed rows: %w", res.Error)
		}
		log.Info("deleted failed transcripts", "rows", res.RowsAffected)
		return nil
	}

	tables := opts.Tables
	if len(tables) == 0 {
		tables = DefaultTables
	}
	var existing []string
	for _, t := range tables {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !nameRe.MatchString(t) {
			log.Warn("skipping invalid table name", "table", t)
			continue
		}
		// check presence individually to avoid any injection risk
		var cnt int64
		if err := gdb.WithContext(ctx).Raw("SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			return fmt.Errorf("query pg_tables for %s: %w", t, err)
		}
		if cnt == 0 {
			log.Info("table not found, skipping", "table", t)
			continue
		}
		existing = append(existing, t)
	}
	if len(existing) == 0 {
		fmt.Fprintln(out, "no requested tables present in the database; nothing to do")
		return nil
	}
	fmt.Fprintln(out, "Tables considered for truncation:")
	for _, t := range existing {
		fmt.Fprintf(out, " - %s\n", t)
	}
	if !confirmed(opts, out) {
		return nil
	}

	quoted := make([]string, 0, len(existing))
	for _, t := range existing {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	log.Info("executing", "sql", stmt)
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("truncate failed: %w", err)
	}
	log.Info("truncate completed")
	return nil
}

func confirmed(opts Options, out io.Writer) bool {
	if opts.DryRun {
		fmt.Fprintln(out, "dry-run enabled; no changes will be made. Use -dry-run=false -yes to execute.")
		return false
	}
	if !opts.Yes {
		fmt.Fprintln(out, "Destructive operation. Pass -yes to confirm execution. Aborting.")
		return false
	}
	return true
}
