// Package maintenance provides the maintenance command and its subcommands
package maintenance

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/inventory"
)

// Command creates and returns the maintenance command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Track firearm cleaning and round counts",
	}

	cmd.AddCommand(
		statusCommand(settings),
		cleanCommand(settings),
		fireCommand(settings),
		dueCommand(settings),
	)

	return cmd
}

func withService(cmd *cobra.Command, settings *conf.Settings, fn func(svc *inventory.MaintenanceService) error) error {
	store, err := datastore.Open(cmd.Context(), datastore.OptionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(inventory.NewMaintenanceService(store))
}

func statusCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status <firearm-id>",
		Short: "Show the maintenance status of a firearm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, settings, func(svc *inventory.MaintenanceService) error {
				status, err := svc.GetMaintenanceStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func cleanCommand(settings *conf.Settings) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "clean <firearm-id>",
		Short: "Log a cleaning and reset the round counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, settings, func(svc *inventory.MaintenanceService) error {
				entry, err := svc.LogCleaning(cmd.Context(), args[0], notes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleaning logged on %s\n", entry.Date.DateString())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Cleaning details")

	return cmd
}

func fireCommand(settings *conf.Settings) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "fire <firearm-id> <rounds>",
		Short: "Add fired rounds to a firearm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rounds, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid round count %q", args[1])
			}
			return withService(cmd, settings, func(svc *inventory.MaintenanceService) error {
				status, err := svc.LogFiredRounds(cmd.Context(), args[0], rounds, notes)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Range session details")

	return cmd
}

func dueCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List firearms that need maintenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, settings, func(svc *inventory.MaintenanceService) error {
				due, err := svc.ListFirearmsNeedingMaintenance(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tROUNDS\tLAST CLEANED\tREASONS")
				for _, fm := range due {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
						fm.Firearm.ID, fm.Firearm.Name, fm.Status.RoundsFired,
						lastCleaned(fm.Status), strings.Join(fm.Status.Reasons, "; "))
				}
				return tw.Flush()
			})
		},
	}
}

func printStatus(w io.Writer, status *entities.MaintenanceStatus) {
	fmt.Fprintf(w, "Rounds since cleaning: %d\n", status.RoundsFired)
	fmt.Fprintf(w, "Last cleaned:          %s\n", lastCleaned(status))
	if !status.NeedsMaintenance {
		fmt.Fprintln(w, "No maintenance needed")
		return
	}
	fmt.Fprintln(w, "Maintenance needed:")
	for _, reason := range status.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
}

func lastCleaned(status *entities.MaintenanceStatus) string {
	if !status.LastCleaning.Valid() {
		return "never"
	}
	return fmt.Sprintf("%s (%d days ago)", status.LastCleaning.DateString(), status.DaysSinceClean)
}
