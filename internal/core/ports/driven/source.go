package driven

import (
	"context"

	"github.com/openstrand/oracle-indexer/internal/core/domain"
)

// DocumentSource produces a finite sequence of documents from one backend.
// Implementations exist for the product database and for filesystem trees.
type DocumentSource interface {
	// Name returns the source mode identifier ("db" or "files").
	Name() string

	// Fetch returns every content-bearing document the source holds, up to
	// the source's configured limit, plus non-fatal warnings accumulated
	// along the way (e.g. unreadable files that were skipped).
	//
	// A non-nil error means the fetch as a whole failed and the run must
	// abort; warnings alone never abort the run.
	Fetch(ctx context.Context) (docs []domain.Document, warnings []string, err error)

	// Close releases backend resources (database handles, watchers).
	Close() error
}
