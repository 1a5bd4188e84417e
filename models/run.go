package models

import "time"

// Run is the summary of one batch invocation.
type Run struct {
	ID         string `gorm:"primaryKey;size:36"`
	StartedAt  time.Time
	FinishedAt *time.Time
	Processed  int
	Skipped    int
	Failed     int
	Cached     int
	Unknowns   int
}
