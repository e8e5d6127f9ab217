// Package checkout provides the checkout command and its subcommands
package checkout

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/inventory"
)

// Command creates and returns the checkout command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check items and loadouts in and out",
	}

	cmd.AddCommand(
		itemCommand(settings),
		returnCommand(settings),
		loadoutCommand(settings),
		returnLoadoutCommand(settings),
		listCommand(settings),
	)

	return cmd
}

// withServices opens the store and runs fn with the inventory options derived
// from settings.
func withServices(cmd *cobra.Command, settings *conf.Settings, fn func(store *datastore.Store, opts []inventory.Option) error) error {
	store, err := datastore.Open(cmd.Context(), datastore.OptionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(store, []inventory.Option{inventory.WithAllowNegativeStock(settings.Import.AllowNegativeStock)})
}

func itemCommand(settings *conf.Settings) *cobra.Command {
	var due, notes string

	cmd := &cobra.Command{
		Use:   "item <item-type> <item-id> <borrower>",
		Short: "Check out a firearm, soft gear or NFA item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemType, err := entities.ParseItemType(args[0])
			if err != nil {
				return err
			}
			expected, err := parseDue(due)
			if err != nil {
				return err
			}
			return withServices(cmd, settings, func(store *datastore.Store, opts []inventory.Option) error {
				c, err := inventory.NewCheckoutService(store, opts...).CheckoutItem(cmd.Context(), inventory.CheckoutRequest{
					ItemID:         args[1],
					ItemType:       itemType,
					BorrowerName:   args[2],
					ExpectedReturn: expected,
					Notes:          notes,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checked out %s %s as %s\n", c.ItemType, c.ItemID, c.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "Expected return date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&notes, "notes", "", "Checkout notes")

	return cmd
}

func returnCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "return <checkout-id>",
		Short: "Return a checked out item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, settings, func(store *datastore.Store, opts []inventory.Option) error {
				c, err := inventory.NewCheckoutService(store, opts...).ReturnItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Returned %s %s on %s\n", c.ItemType, c.ItemID, c.ActualReturn.DateString())
				return nil
			})
		},
	}
}

func loadoutCommand(settings *conf.Settings) *cobra.Command {
	var (
		due, notes    string
		allowNegative bool
		validateOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "loadout <loadout-id> <borrower-id>",
		Short: "Check out every item of a loadout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := parseDue(due)
			if err != nil {
				return err
			}
			return withServices(cmd, settings, func(store *datastore.Store, opts []inventory.Option) error {
				svc := inventory.NewLoadoutService(store, opts...)
				out := cmd.OutOrStdout()

				if validateOnly {
					v, err := svc.ValidateCheckout(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					printIssues(out, v.Issues)
					if !v.CanCheckout {
						return fmt.Errorf("loadout %s cannot be checked out", args[0])
					}
					fmt.Fprintln(out, "Loadout is ready for checkout")
					return nil
				}

				checkoutOpts := inventory.LoadoutCheckoutOptions{ExpectedReturn: expected, Notes: notes}
				if cmd.Flags().Changed("allow-negative") {
					checkoutOpts.AllowNegativeStock = &allowNegative
				}
				result, err := svc.CheckoutLoadout(cmd.Context(), args[0], args[1], checkoutOpts)
				if err != nil {
					return err
				}
				printIssues(out, result.Warnings)
				fmt.Fprintf(out, "Loadout checked out as %s with %d items\n", result.LoadoutCheckout.ID, len(result.Checkouts))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "Expected return date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&notes, "notes", "", "Checkout notes")
	cmd.Flags().BoolVar(&allowNegative, "allow-negative", false, "Allow consumable stock to go below zero")
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "Only report readiness issues")

	return cmd
}

func returnLoadoutCommand(settings *conf.Settings) *cobra.Command {
	var (
		rounds  []string
		restock []string
		rain    bool
		ammo    string
		notes   string
	)

	cmd := &cobra.Command{
		Use:   "return-loadout <loadout-id>",
		Short: "Return a checked out loadout and book what happened on the trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fired, err := parseCounts(rounds)
			if err != nil {
				return fmt.Errorf("invalid --rounds: %w", err)
			}
			restocked, err := parseCounts(restock)
			if err != nil {
				return fmt.Errorf("invalid --restock: %w", err)
			}
			ret := inventory.LoadoutReturn{
				RoundsFired:  fired,
				RainExposure: rain,
				AmmoType:     ammo,
				Notes:        notes,
			}
			for id, qty := range restocked {
				ret.Restock = append(ret.Restock, inventory.Restock{ConsumableID: id, Quantity: qty})
			}

			return withServices(cmd, settings, func(store *datastore.Store, opts []inventory.Option) error {
				lc, err := inventory.NewLoadoutService(store, opts...).ReturnLoadout(cmd.Context(), args[0], ret)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loadout returned, %d rounds fired\n", lc.RoundsFired)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&rounds, "rounds", nil, "Rounds fired per firearm as <firearm-id>=<count>, repeatable")
	cmd.Flags().StringArrayVar(&restock, "restock", nil, "Unused consumables as <consumable-id>=<quantity>, repeatable")
	cmd.Flags().BoolVar(&rain, "rain", false, "Gear was exposed to rain")
	cmd.Flags().StringVar(&ammo, "ammo", "", "Ammunition type fired, e.g. corrosive or suppressed")
	cmd.Flags().StringVar(&notes, "notes", "", "Return notes")

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var overdue bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active checkouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, settings, func(store *datastore.Store, opts []inventory.Option) error {
				svc := inventory.NewCheckoutService(store, opts...)
				list := svc.ActiveCheckouts
				if overdue {
					list = svc.OverdueCheckouts
				}
				checkouts, err := list(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tITEM TYPE\tITEM\tBORROWER\tCHECKED OUT\tDUE")
				for _, c := range checkouts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						c.ID, c.ItemType, c.ItemID, c.BorrowerID, c.CheckoutDate.DateString(), c.ExpectedReturn.DateString())
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&overdue, "overdue", false, "Only show checkouts past their expected return")

	return cmd
}

func parseDue(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := entities.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --due %q, expected YYYY-MM-DD", s)
	}
	return d.Time, nil
}

// parseCounts turns id=N pairs into a map, summing repeated ids.
func parseCounts(pairs []string) (map[string]int, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	counts := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		id, n, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("%q is not <id>=<count>", pair)
		}
		count, err := strconv.Atoi(n)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%q has an invalid count", pair)
		}
		counts[id] += count
	}
	return counts, nil
}

func printIssues(w io.Writer, issues []inventory.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(w, "%-8s %s %s: %s\n", issue.Severity, issue.ItemType, issue.ItemID, issue.Message)
	}
}
