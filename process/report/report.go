// Package report summarizes the transcript ledger straight from Postgres.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Report is a snapshot of the ledger.
type Report struct {
	ByStatus map[string]int64
	ByKind   map[string]int64
	Unknown  []Row
	Runs     []Run
}

// Row is a transcript that still has unrecognized glyphs.
type Row struct {
	ID       int64
	FileName string
	Unknowns int
	Updated  time.Time
}

type Run struct {
	ID        string
	StartedAt time.Time
	Finished  bool
	Processed int
	Failed    int
	Unknowns  int
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Load reads counts, the limit transcripts with the most unknown glyphs and
// the limit most recent runs.
func Load(ctx context.Context, db *sql.DB, limit int) (Report, error) {
	if limit <= 0 {
		limit = 20
	}
	r := Report{ByStatus: map[string]int64{}, ByKind: map[string]int64{}}
	if err := countBy(ctx, db, `SELECT status, COUNT(*) FROM transcripts GROUP BY status`, r.ByStatus); err != nil {
		return r, fmt.Errorf("count by status: %w", err)
	}
	if err := countBy(ctx, db, `SELECT error_kind, COUNT(*) FROM transcripts WHERE status = 'failed' GROUP BY error_kind`, r.ByKind); err != nil {
		return r, fmt.Errorf("count by kind: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT id, file_name, unknowns, updated_at FROM transcripts
		WHERE status = 'done' AND unknowns > 0 ORDER BY unknowns DESC, id LIMIT $1`, limit)
	if err != nil {
		return r, fmt.Errorf("query unknowns: %w", err)
	}
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.FileName, &row.Unknowns, &row.Updated); err != nil {
			rows.Close()
			return r, err
		}
		r.Unknown = append(r.Unknown, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return r, err
	}

	rows, err = db.QueryContext(ctx, `SELECT id, started_at, finished_at, processed, failed, unknowns FROM runs
		ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return r, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var run Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.StartedAt, &finished, &run.Processed, &run.Failed, &run.Unknowns); err != nil {
			return r, err
		}
		run.Finished = finished.Valid
		r.Runs = append(r.Runs, run)
	}
	return r, rows.Err()
}

func countBy(ctx context.Context, db *sql.DB, query string, into map[string]int64) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key sql.NullString
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key.String] += n
	}
	return rows.Err()
}

// Write prints r in a plain text layout, one record per line.
func Write(w io.Writer, r Report) {
	fmt.Fprintf(w, "transcripts: done=%d failed=%d\n", r.ByStatus["done"], r.ByStatus["failed"])
	if len(r.ByKind) > 0 {
		var parts []string
		for _, k := range sortedKeys(r.ByKind) {
			parts = append(parts, fmt.Sprintf("%s=%d", k, r.ByKind[k]))
		}
		fmt.Fprintf(w, "failures: %s\n", strings.Join(parts, " "))
	}
	if len(r.Unknown) > 0 {
		fmt.Fprintln(w, "with unknown glyphs:")
		for _, row := range r.Unknown {
			fmt.Fprintf(w, "%d|%s|%d|%s\n", row.ID, row.FileName, row.Unknowns, row.Updated.Format(time.RFC3339))
		}
	}
	if len(r.Runs) > 0 {
		fmt.Fprintln(w, "runs:")
		for _, run := range r.Runs {
			state := "running"
			if run.Finished {
				state = "finished"
			}
			fmt.Fprintf(w, "%s|%s|%s|processed=%d failed=%d unknowns=%d\n",
				run.ID, run.StartedAt.Format(time.RFC3339), state, run.Processed, run.Failed, run.Unknowns)
		}
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stale lists transcripts worth another pass: failures, rows with unknown
// glyphs and rows produced by a different template table than fingerprint.
func Stale(ctx context.Context, db *sql.DB, fingerprint string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT file_name FROM transcripts
		WHERE status = 'failed' OR unknowns > 0 OR fingerprint <> $1 ORDER BY file_name`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query stale: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
