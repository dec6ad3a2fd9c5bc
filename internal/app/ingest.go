package app

import (
	"context"
	"fmt"
	"os"

	"aud-rate-history/internal/ingest"
	"aud-rate-history/internal/merge"
	"aud-rate-history/internal/storage"
)

// Import runs the one-time bulk archive import: wide CSV in, one merged
// batch out. The importer must not run while the daily job does; the store's
// writer lock enforces that.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	file, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	records, err := ingest.ReadArchive(file, storage.SourceBulkImport)
	if err != nil {
		return err
	}

	return a.ingestBatch(ctx, records, opts.DryRun)
}

// Update applies one daily document as an incremental batch. Re-running the
// same document for the same date is a safe no-op.
func (a *App) Update(ctx context.Context, opts UpdateOptions) error {
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("read daily document: %w", err)
	}

	doc, err := ingest.ParseDailyDocument(data)
	if err != nil {
		return err
	}

	return a.ingestBatch(ctx, doc.Records(storage.SourceIncremental), false)
}

// ingestBatch normalizes, merges, and reports. Invalid records are logged
// and skipped; they never abort the rest of the batch.
func (a *App) ingestBatch(ctx context.Context, records []ingest.RawRecord, dryRun bool) error {
	normalizer := ingest.NewNormalizer(a.Config.Ingest.MaxValue)
	observations, invalid := normalizer.NormalizeBatch(records)

	for _, verr := range invalid {
		a.Logger.Warn().
			Str("date", verr.Date).
			Str("asset", verr.Asset).
			Str("field", verr.Field).
			Str("reason", verr.Reason).
			Msg("record rejected at normalization")
	}

	if dryRun {
		// Merge into a throwaway in-memory store: intra-batch duplicates and
		// conflicts still surface, nothing durable is touched.
		report, err := merge.New(storage.NewMemory(), a.Logger).Merge(ctx, observations)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "dry run: nothing written")
		printIngestReport(report, len(invalid))
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := merge.New(store, a.Logger).Merge(ctx, observations)
	if err != nil {
		return err
	}

	printIngestReport(report, len(invalid))
	return nil
}

func printIngestReport(report merge.Report, invalid int) {
	fmt.Fprintf(os.Stdout, "batch %s\n", report.BatchID)
	fmt.Fprintf(os.Stdout, "  accepted:          %d\n", report.Accepted)
	fmt.Fprintf(os.Stdout, "  replaced:          %d\n", report.Replaced)
	fmt.Fprintf(os.Stdout, "  skipped duplicate: %d\n", report.SkippedDuplicate)
	fmt.Fprintf(os.Stdout, "  conflicts:         %d\n", len(report.Conflicts))
	fmt.Fprintf(os.Stdout, "  invalid:           %d\n", invalid)

	for _, conflict := range report.Conflicts {
		fmt.Fprintf(os.Stderr, "conflict %s: stored %s (%s), attempted %s (%s)\n",
			conflict.Key,
			conflict.Existing.Value, conflict.Existing.Source,
			conflict.Attempted.Value, conflict.Attempted.Source)
	}
}
