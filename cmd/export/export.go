// Package export provides the export command
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/importexport"
)

// Command creates and returns the export command
func Command(settings *conf.Settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the complete database as a sectioned CSV backup",
		Long: `Export writes every firearm, NFA item, soft gear, attachment, consumable,
reload batch, loadout and borrower into a single CSV file that can be restored
with the import command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, settings, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, settings *conf.Settings, output string) error {
	ctx := cmd.Context()
	store, err := datastore.Open(ctx, datastore.OptionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := importexport.NewEngine(store, importexport.WithVersion(settings.Export.Version))

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output) //nolint:gosec // user supplied output path
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := engine.Export(ctx, w); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported database to %s\n", output)
	}
	return nil
}
