// Package importcsv provides the import command
package importcsv

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/importexport"
)

// Command creates and returns the import command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		dryRun      bool
		onDuplicate string
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Restore a sectioned CSV backup into the database",
		Long: `Import reads a CSV backup produced by export (or filled in from a template)
and restores it section by section. Rows whose natural key already exists are
handled according to --on-duplicate. Use --dry-run to validate the file and
count duplicates without writing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolution := settings.Import.DefaultResolution
			if cmd.Flags().Changed("on-duplicate") {
				resolution = onDuplicate
			}
			r, err := importexport.ParseResolution(resolution)
			if err != nil {
				return err
			}
			return runImport(cmd, settings, args[0], dryRun, r, quiet)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Validate and preview without writing")
	cmd.Flags().StringVar(&onDuplicate, "on-duplicate", conf.DefaultResolution, "Duplicate handling: skip, overwrite, rename or cancel")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")

	return cmd
}

func runImport(cmd *cobra.Command, settings *conf.Settings, path string, dryRun bool, resolution importexport.Resolution, quiet bool) error {
	ctx := cmd.Context()

	f, err := os.Open(path) //nolint:gosec // user supplied input path
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := importexport.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	store, err := datastore.Open(ctx, datastore.OptionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := importexport.NewEngine(store)
	out := cmd.OutOrStdout()

	if dryRun {
		preview, err := engine.PreviewDocument(ctx, doc)
		if err != nil {
			return err
		}
		printPreview(out, preview)
		if !preview.CanImport() {
			return fmt.Errorf("%d validation errors, import would skip the affected rows", len(preview.Errors))
		}
		return nil
	}

	opts := importexport.ImportOptions{DefaultResolution: resolution}
	if !quiet {
		progress := cmd.ErrOrStderr()
		opts.Progress = func(percent, total int, entity, message string) {
			fmt.Fprintf(progress, "\r[%3d/%d] %-18s %s", percent, total, entity, message)
			if percent == total {
				fmt.Fprintln(progress)
			}
		}
	}

	result, err := engine.ImportDocument(ctx, doc, opts)
	if result != nil {
		printResult(out, result)
	}
	if errors.Is(err, importexport.ErrImportCancelled) {
		return fmt.Errorf("import cancelled, the current section was rolled back")
	}
	return err
}

func printPreview(w io.Writer, p *importexport.Preview) {
	if v := p.Metadata["version"]; v != "" {
		fmt.Fprintf(w, "File version %s exported %s\n\n", v, p.Metadata["export_date"])
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tROWS\tDUPLICATES")
	for _, s := range p.Sections {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Name, s.Rows, s.Duplicates)
	}
	_ = tw.Flush()
	printIssues(w, "Errors", p.Errors)
	printIssues(w, "Warnings", p.Warnings)
}

func printResult(w io.Writer, r *importexport.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tROWS\tIMPORTED\tOVERWRITTEN\tSKIPPED\tFAILED\t")
	for _, s := range r.Sections {
		status := ""
		if s.RolledBack {
			status = "rolled back"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n", s.Name, s.Rows, s.Imported, s.Overwritten, s.Skipped, s.Failed, status)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nImported %d, overwritten %d, skipped %d, failed %d in %s\n",
		r.Imported, r.Overwritten, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond))
	printIssues(w, "Errors", r.Errors)
	printIssues(w, "Warnings", r.Warnings)
}

func printIssues(w io.Writer, title string, issues []importexport.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, i := range issues {
		fmt.Fprintf(w, "  %s\n", i)
	}
}
