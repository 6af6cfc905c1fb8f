package driving

import (
	"context"
	"time"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
)

// IndexerService runs the full document-embedding pipeline.
type IndexerService interface {
	// Run executes one complete indexing pass: fetch, chunk, embed,
	// assemble, write. It returns the run result on success; any returned
	// error is fatal for the run.
	Run(ctx context.Context) (*RunResult, error)
}

// RunResult summarises a completed indexing run.
type RunResult struct {
	// Index is the assembled artifact (also persisted unless DryRun).
	Index *domain.Index

	// OutputPath is where the artifact was (or would have been) written.
	OutputPath string

	// BytesWritten is the artifact size on disk; zero in dry-run.
	BytesWritten int64

	// Warnings are the non-fatal problems encountered (skipped files,
	// dropped chunks).
	Warnings []string

	// DryRun indicates the write and embedding calls were skipped.
	DryRun bool

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}
