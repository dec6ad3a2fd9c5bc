// Package merge reconciles batches of normalized observations against the
// store. A merge is idempotent: re-running the same batch produces zero new
// writes. Conflicts are recorded for surfacing, never silently discarded and
// never silently applied.
package merge

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aud-rate-history/internal/storage"
)

// Conflict captures one rejected write; the stored observation stands.
type Conflict struct {
	Key       storage.Key
	Existing  storage.Observation
	Attempted storage.Observation
}

// Report summarises a merged batch.
type Report struct {
	BatchID uuid.UUID
	// Accepted counts inserts of previously absent keys.
	Accepted int
	// Replaced counts incremental writes that superseded a bulk-import row.
	Replaced int
	// SkippedDuplicate counts identical re-submissions (the safe re-run case).
	SkippedDuplicate int
	Conflicts        []Conflict
}

// Applied reports how many observations the batch actually wrote.
func (r Report) Applied() int { return r.Accepted + r.Replaced }

// Merger applies batches through the store's transaction boundary.
type Merger struct {
	store  storage.Store
	logger zerolog.Logger
}

// New constructs a Merger.
func New(store storage.Store, logger zerolog.Logger) *Merger {
	return &Merger{store: store, logger: logger.With().Str("component", "merger").Logger()}
}

// Merge applies a batch atomically with respect to readers: the store's
// Batch boundary guarantees a concurrent range query sees the pre-merge or
// post-merge state, never part of one. A storage failure aborts the batch
// and the pre-batch state remains; conflicts do not abort it.
func (m *Merger) Merge(ctx context.Context, batch []storage.Observation) (Report, error) {
	report := Report{BatchID: uuid.New()}

	err := m.store.Batch(ctx, func(w storage.BatchWriter) error {
		for _, obs := range batch {
			outcome, putErr := w.Put(ctx, obs)

			var conflict *storage.ConflictError
			if errors.As(putErr, &conflict) {
				report.Conflicts = append(report.Conflicts, Conflict{
					Key:       conflict.Key,
					Existing:  conflict.Existing,
					Attempted: conflict.Attempted,
				})
				m.logger.Warn().
					Str("key", conflict.Key.String()).
					Str("stored", conflict.Existing.Value.String()).
					Str("stored_source", string(conflict.Existing.Source)).
					Str("attempted", conflict.Attempted.Value.String()).
					Str("attempted_source", string(conflict.Attempted.Source)).
					Msg("conflicting write rejected; stored value preserved")
				continue
			}
			if putErr != nil {
				return putErr
			}

			switch outcome {
			case storage.PutInserted:
				report.Accepted++
			case storage.PutReplaced:
				report.Replaced++
			case storage.PutDuplicate:
				report.SkippedDuplicate++
			}
		}
		return nil
	})
	if err != nil {
		return Report{BatchID: report.BatchID}, err
	}

	m.logger.Info().
		Str("batch_id", report.BatchID.String()).
		Int("accepted", report.Accepted).
		Int("replaced", report.Replaced).
		Int("skipped_duplicate", report.SkippedDuplicate).
		Int("conflicts", len(report.Conflicts)).
		Msg("batch merged")

	return report, nil
}
