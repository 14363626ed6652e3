package ports

import (
	"context"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// RunStore persists completed runs for the history and show commands.
// Implementations own their schema; the engine itself never performs I/O.
type RunStore interface {
	// SaveRun persists a completed run.
	SaveRun(ctx context.Context, run domain.RunResult) error

	// GetRun loads one run by ID.
	// Returns ErrRunNotFound when no run carries the ID.
	GetRun(ctx context.Context, id string) (domain.RunResult, error)

	// ListRuns returns summaries of stored runs, newest first.
	// A non-positive limit returns all runs.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Close releases the store's resources.
	Close() error
}
