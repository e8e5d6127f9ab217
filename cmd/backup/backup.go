// Package backup provides the backup command
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/datastore"
)

const snapshotTimeout = 10 * time.Minute

// Command creates and returns the backup command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [destination.db]",
		Short: "Write a consistent copy of the SQLite database",
		Long: `Backup takes an online snapshot of the database with VACUUM INTO. Without a
destination the copy is written to a backups directory next to the database,
named after the current time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) == 1 {
				dest = args[0]
			}
			return runBackup(cmd, settings, dest)
		},
	}

	return cmd
}

func runBackup(cmd *cobra.Command, settings *conf.Settings, dest string) error {
	if dest == "" {
		dest = DefaultDestination(settings.Database.Path, time.Now())
	}

	// Create a context with timeout
	ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
	defer cancel()

	store, err := datastore.Open(ctx, datastore.OptionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Snapshot(ctx, dest); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", dest)
	return nil
}

// DefaultDestination returns <db dir>/backups/<db name>-YYYYMMDD-HHMMSS.db.
func DefaultDestination(dbPath string, now time.Time) string {
	base := filepath.Base(dbPath)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(filepath.Dir(dbPath), "backups", fmt.Sprintf("%s-%s.db", name, now.Format("20060102-150405")))
}
