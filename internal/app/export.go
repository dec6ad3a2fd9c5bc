package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/export"
	"aud-rate-history/internal/storage"
)

// CSVDate exports the wide table for a single date across all tracked assets.
func (a *App) CSVDate(ctx context.Context, opts CSVOptions) error {
	day, err := storage.ParseDay(opts.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", opts.Date)
	}
	return a.exportWide(ctx, day, day, opts.OutPath)
}

// CSVRange exports the wide table for a date range across all tracked assets.
func (a *App) CSVRange(ctx context.Context, opts CSVOptions) error {
	start, err := storage.ParseDay(opts.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: want YYYY-MM-DD", opts.Start)
	}
	end, err := storage.ParseDay(opts.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: want YYYY-MM-DD", opts.End)
	}
	return a.exportWide(ctx, start, end, opts.OutPath)
}

func (a *App) exportWide(ctx context.Context, from, to time.Time, outPath string) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	table, err := export.Pivot(ctx, store, from, to, asset.Symbols())
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		if err := ensureDir(outPath); err != nil {
			return err
		}
		file, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	if err := table.WriteCSV(out, a.Config.Export.DecimalPlaces); err != nil {
		return err
	}

	a.Logger.Info().
		Int("rows", len(table.Rows)).
		Int("assets", len(table.Assets)).
		Msg("exported wide csv")
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
