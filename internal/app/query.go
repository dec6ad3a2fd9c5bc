package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"aud-rate-history/internal/asset"
	"aud-rate-history/internal/query"
	"aud-rate-history/internal/storage"
)

// Rate answers a point query and prints the stored value.
func (a *App) Rate(ctx context.Context, opts RateOptions) error {
	day, err := storage.ParseDay(opts.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", opts.Date)
	}
	sym, err := asset.Parse(opts.Asset)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := query.New(store)
	obs, err := engine.Point(ctx, day, sym)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no data for %s on %s", sym, opts.Date)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s on %s: %s\n", describeAsset(sym), opts.Date, obs.Value.StringFixed(4))
	return nil
}

// Range answers a range query, printing the sequence and its statistics.
func (a *App) Range(ctx context.Context, opts RangeOptions) error {
	start, err := storage.ParseDay(opts.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: want YYYY-MM-DD", opts.Start)
	}
	end, err := storage.ParseDay(opts.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: want YYYY-MM-DD", opts.End)
	}
	sym, err := asset.Parse(opts.Asset)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := query.New(store)
	observations, err := engine.Range(ctx, start, end, sym)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Fprintf(os.Stdout, "no data for %s from %s to %s\n", sym, opts.Start, opts.End)
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tValue\tSource")
	for _, obs := range observations {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			obs.Date.Format(storage.DayFormat), obs.Value.StringFixed(4), obs.Source)
	}
	writer.Flush()

	if stats, ok := query.Stats(observations); ok {
		fmt.Fprintf(os.Stdout, "\nRecords: %d\n", stats.Count)
		fmt.Fprintf(os.Stdout, "Min:  %s\n", stats.Min.StringFixed(4))
		fmt.Fprintf(os.Stdout, "Max:  %s\n", stats.Max.StringFixed(4))
		fmt.Fprintf(os.Stdout, "Mean: %s\n", stats.Mean.StringFixed(4))
		fmt.Fprintf(os.Stdout, "Latest: %s on %s\n",
			stats.Latest.Value.StringFixed(4), stats.Latest.Date.Format(storage.DayFormat))
	}
	return nil
}

// Summary prints store coverage.
func (a *App) Summary(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	stats, err := query.New(store).Summary(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Total observations: %d\n", stats.Total)
	if stats.Total == 0 {
		return nil
	}
	fmt.Fprintf(os.Stdout, "Date range: %s to %s\n",
		stats.MinDate.Format(storage.DayFormat), stats.MaxDate.Format(storage.DayFormat))

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Asset\tObservations")
	for _, sym := range asset.Symbols() {
		if count, ok := stats.PerAsset[sym]; ok {
			fmt.Fprintf(writer, "%s\t%d\n", sym, count)
		}
	}
	return writer.Flush()
}

// ListCurrencies prints the closed asset set grouped by category.
func (a *App) ListCurrencies() error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Symbol\tCategory\tUnit\tName")
	for _, info := range asset.All() {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", info.Symbol, info.Category, info.Unit, info.Name)
	}
	return writer.Flush()
}

func describeAsset(sym asset.Symbol) string {
	info, _ := asset.Lookup(sym)
	if info.Category == asset.CategoryCurrency {
		return "AUD/" + string(sym)
	}
	return string(sym)
}
