// Package store records which screenshots have been transcribed and writes
// transcript files.
package store

import (
	"context"
	"errors"

	"screentext/models"
)

// ErrNotFound is returned by lookups of unknown transcripts.
var ErrNotFound = errors.New("transcript not found")

// Ledger is the "already processed" bookkeeping. Done must only report true
// for screenshots whose transcript was written successfully, so failed images
// are retried by the next run.
type Ledger interface {
	Done(ctx context.Context, name string) (bool, error)
	Record(ctx context.Context, t *models.Transcript) error
}

// RunRecorder is implemented by ledgers that keep batch run summaries.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.Run) error
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
