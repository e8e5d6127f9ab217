// Package stats provides the stats command
package stats

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/inventory"
	"github.com/tphakala/gear-tracker/internal/observability/metrics"
)

const metricPrefix = "geartracker_"

// Report is the collected inventory overview.
type Report struct {
	TableCounts map[string]int64
	SizeBytes   int64
	LowStock    []*entities.Consumable
	Overdue     []*entities.Checkout
	Maintenance []inventory.FirearmMaintenance
	Metrics     []metrics.Sample
}

// Command creates and returns the stats command
func Command(settings *conf.Settings) *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the inventory and database health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			dbMetrics, err := metrics.NewDatastoreMetrics(registry)
			if err != nil {
				return fmt.Errorf("failed to create metrics: %w", err)
			}

			opts := datastore.OptionsFromSettings(settings)
			opts.Metrics = dbMetrics
			store, err := datastore.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			report, err := Collect(cmd.Context(), store)
			if err != nil {
				return err
			}
			if showMetrics {
				if report.Metrics, err = metrics.Gather(registry, metricPrefix); err != nil {
					return fmt.Errorf("failed to gather metrics: %w", err)
				}
			}
			return Print(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Also print the collected database metrics")

	return cmd
}

// Collect runs the overview queries concurrently.
func Collect(ctx context.Context, store *datastore.Store) (*Report, error) {
	report := &Report{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := store.TableCounts(ctx)
		report.TableCounts = counts
		return err
	})
	g.Go(func() error {
		size, err := store.Size()
		report.SizeBytes = size
		return err
	})
	g.Go(func() error {
		low, err := inventory.NewConsumableService(store).LowStock(ctx)
		report.LowStock = low
		return err
	})
	g.Go(func() error {
		overdue, err := inventory.NewCheckoutService(store).OverdueCheckouts(ctx)
		report.Overdue = overdue
		return err
	})
	g.Go(func() error {
		due, err := inventory.NewMaintenanceService(store).ListFirearmsNeedingMaintenance(ctx)
		report.Maintenance = due
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// Print writes the report as aligned tables.
func Print(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS")
	for _, name := range slices.Sorted(maps.Keys(r.TableCounts)) {
		fmt.Fprintf(tw, "%s\t%d\n", name, r.TableCounts[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nDatabase size: %d bytes\n", r.SizeBytes)

	if len(r.LowStock) > 0 {
		fmt.Fprintln(w, "\nLow stock:")
		for _, c := range r.LowStock {
			fmt.Fprintf(w, "  %s: %d %s (minimum %d)\n", c.Name, c.Quantity, c.Unit, c.MinQuantity)
		}
	}
	if len(r.Overdue) > 0 {
		fmt.Fprintln(w, "\nOverdue checkouts:")
		for _, c := range r.Overdue {
			fmt.Fprintf(w, "  %s %s due %s\n", c.ItemType, c.ItemID, c.ExpectedReturn.DateString())
		}
	}
	if len(r.Maintenance) > 0 {
		fmt.Fprintln(w, "\nNeeds maintenance:")
		for _, fm := range r.Maintenance {
			fmt.Fprintf(w, "  %s (%d rounds)\n", fm.Firearm.Name, fm.Status.RoundsFired)
		}
	}

	if len(r.Metrics) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "METRIC\tLABELS\tVALUE")
		for _, s := range r.Metrics {
			fmt.Fprintf(tw, "%s\t%s\t%g\n", s.Name, s.Labels, s.Value)
		}
		return tw.Flush()
	}
	return nil
}
