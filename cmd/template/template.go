// Package template provides the template command
package template

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/importexport"
)

// Command creates and returns the template command
func Command(_ *conf.Settings) *cobra.Command {
	var (
		entity string
		output string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty import template",
		Long:  `Template writes the section headers and column names of the CSV format without data rows.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output) //nolint:gosec // user supplied output path
				if err != nil {
					return fmt.Errorf("failed to create template file: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			// The template needs no database.
			return importexport.NewEngine(nil).Template(w, entity)
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Emit a single section: "+strings.Join(sectionNames(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func sectionNames() []string {
	specs := importexport.Specs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = strings.ToLower(s.Name)
	}
	return names
}
