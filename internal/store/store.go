package store

import (
	"context"
	"time"

	"github.com/joescharf/crowdfund/internal/models"
)

// ExportListFilter specifies filters for listing export history.
type ExportListFilter struct {
	Format string
	Status models.ExportStatus
	Limit  int
}

// Store defines the persistence interface for export history.
// Drafts themselves are never stored.
type Store interface {
	RecordExport(ctx context.Context, rec *models.ExportRecord) error
	GetExport(ctx context.Context, id string) (*models.ExportRecord, error)
	ListExports(ctx context.Context, filter ExportListFilter) ([]*models.ExportRecord, error)
	PruneExports(ctx context.Context, before time.Time) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
