// Package schema prints the constraints and indexes of the ledger tables,
// using the pgx database/sql driver.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Tables inspected by default.
var Tables = []string{"transcripts", "runs", "operators", "refresh_tokens"}

// Entry is one constraint or index.
type Entry struct {
	Table      string
	Name       string
	Kind       string // constraint type letter, or "index"
	Definition string
}

// Inspect connects to dsn and returns constraints and indexes of tables.
func Inspect(ctx context.Context, dsn string, tables []string) ([]Entry, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	if len(tables) == 0 {
		tables = Tables
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	var out []Entry
	for _, t := range tables {
		rows, err := db.QueryContext(ctx, `
			SELECT con.conname, con.contype::text, pg_get_constraintdef(con.oid)
			FROM pg_constraint con
			JOIN pg_class rel ON rel.oid = con.conrelid
			WHERE rel.relname = $1
			ORDER BY con.conname`, t)
		if err != nil {
			return nil, fmt.Errorf("query constraints: %w", err)
		}
		out, err = scanEntries(rows, t, "", out)
		if err != nil {
			return nil, err
		}
		rows, err = db.QueryContext(ctx, `
			SELECT indexname, indexdef FROM pg_indexes
			WHERE schemaname = 'public' AND tablename = $1
			ORDER BY indexname`, t)
		if err != nil {
			return nil, fmt.Errorf("query indexes: %w", err)
		}
		out, err = scanEntries(rows, t, "index", out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// scanEntries reads (name, kind, def) rows, or (name, def) when kind is given.
func scanEntries(rows *sql.Rows, table, kind string, out []Entry) ([]Entry, error) {
	defer rows.Close()
	for rows.Next() {
		e := Entry{Table: table, Kind: kind}
		var err error
		if kind == "" {
			err = rows.Scan(&e.Name, &e.Kind, &e.Definition)
		} else {
			err = rows.Scan(&e.Name, &e.Definition)
		}
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Write prints entries grouped by table.
func Write(w io.Writer, entries []Entry) {
	last := ""
	for _, e := range entries {
		if e.Table != last {
			fmt.Fprintf(w, "%s:\n", e.Table)
			last = e.Table
		}
		fmt.Fprintf(w, "- %s [%s]\n    def: %s\n", e.Name, kindName(e.Kind), e.Definition)
	}
}

func kindName(k string) string {
	switch k {
	case "p":
		return "primary key"
	case "u":
		return "unique"
	case "f":
		return "foreign key"
	case "c":
		return "check"
	}
	return k
}
