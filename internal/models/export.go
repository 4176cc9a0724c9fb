package models

import "time"

// ExportStatus is the terminal outcome of an export attempt.
type ExportStatus string

const (
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportRecord is one row of export history. It never carries the draft itself.
type ExportRecord struct {
	ID          string
	Format      string
	Status      ExportStatus
	Filename    string
	Bytes       int64
	Error       string
	ProjectName string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns how long the attempt took.
func (r *ExportRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
