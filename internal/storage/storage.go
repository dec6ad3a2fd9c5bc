package storage

import (
	"context"
	"time"

	"aud-rate-history/internal/asset"
)

// PutOutcome classifies what a successful Put did.
type PutOutcome int

const (
	// PutInserted means no observation existed for the key.
	PutInserted PutOutcome = iota
	// PutReplaced means an incremental write superseded a bulk-import row.
	PutReplaced
	// PutDuplicate means the identical fact was already stored; nothing was
	// written. Re-running a batch is therefore safe.
	PutDuplicate
)

func (o PutOutcome) String() string {
	switch o {
	case PutInserted:
		return "inserted"
	case PutReplaced:
		return "replaced"
	case PutDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Reader answers point and range queries over committed observations.
// Implementations must return ranges in ascending date order with both
// endpoints inclusive, and an empty slice (not an error) when nothing falls
// inside the window.
type Reader interface {
	Get(ctx context.Context, day time.Time, sym asset.Symbol) (Observation, error)
	Exists(ctx context.Context, day time.Time, sym asset.Symbol) (bool, error)
	Range(ctx context.Context, from, to time.Time, sym asset.Symbol) ([]Observation, error)
	Summary(ctx context.Context) (SummaryStats, error)
}

// Writer applies single observations under the source-precedence rule:
// insert when absent; an incremental observation replaces a bulk-import one;
// any other disagreement is a *ConflictError and the stored value stands.
type Writer interface {
	Put(ctx context.Context, obs Observation) (PutOutcome, error)
}

// BatchWriter is the view handed to a batch function. Reads inside the batch
// observe earlier writes of the same batch.
type BatchWriter interface {
	Writer
	Get(ctx context.Context, day time.Time, sym asset.Symbol) (Observation, error)
}

// Store is the durable observation collection. Batch runs fn inside a single
// logical transaction: concurrent readers see either the pre-batch or the
// post-batch state, never a half-applied one, and a failed batch leaves the
// pre-batch state behind.
type Store interface {
	Reader
	Writer
	Batch(ctx context.Context, fn func(w BatchWriter) error) error
}
