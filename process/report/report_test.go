package report

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestWrite(t *testing.T) {
	at := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	r := Report{
		ByStatus: map[string]int64{"done": 3, "failed": 2},
		ByKind:   map[string]int64{"ODD_WIDTH_LAYOUT": 1, "DECODE_FAILURE": 1},
		Unknown:  []Row{{ID: 7, FileName: "a.png", Unknowns: 2, Updated: at}},
		Runs:     []Run{{ID: "r1", StartedAt: at, Finished: true, Processed: 3, Failed: 2}},
	}
	var buf bytes.Buffer
	Write(&buf, r)
	want := []string{
		"transcripts: done=3 failed=2",
		"failures: DECODE_FAILURE=1 ODD_WIDTH_LAYOUT=1",
		"7|a.png|2|2025-08-01T10:00:00Z",
		"r1|2025-08-01T10:00:00Z|finished|processed=3 failed=2 unknowns=0",
	}
	for _, w := range want {
		if !strings.Contains(buf.String(), w) {
			t.Errorf("missing %q in:\n%s", w, buf.String())
		}
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
}

// Opt-in: set DB_DSN_TEST=1 and DB_DSN; the ledger tables must exist.
func TestLoadAgainstDatabase(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	ctx := context.Background()
	db, err := Open(ctx, os.Getenv("DB_DSN"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := Load(ctx, db, 5); err != nil {
		t.Fatal(err)
	}
}
