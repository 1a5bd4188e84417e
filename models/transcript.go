package models

import "time"

// Transcript status values. Only done rows count as processed.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Transcript is the ledger row of one screenshot. A failed attempt keeps the
// row (with the error) so reviewers can see it; a later successful run
// overwrites it.
type Transcript struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string `gorm:"size:255;not null;uniqueIndex"`
	Digest      string `gorm:"size:64;index"`
	Fingerprint string `gorm:"size:64"`
	Status      string `gorm:"size:16;not null;index"`
	Text        string `gorm:"type:text"`
	Lines       int
	Unknowns    int    `gorm:"index"`
	OutputPath  string `gorm:"column:output_path;size:512"`
	ErrorKind   string `gorm:"size:32"`
	// FailedReason is truncated to the column size by the ledger.
	FailedReason string `gorm:"size:255"`
	RunID        string `gorm:"size:36;index"`
}
