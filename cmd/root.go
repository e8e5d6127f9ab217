package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/gear-tracker/cmd/backup"
	"github.com/tphakala/gear-tracker/cmd/checkout"
	"github.com/tphakala/gear-tracker/cmd/export"
	"github.com/tphakala/gear-tracker/cmd/importcsv"
	"github.com/tphakala/gear-tracker/cmd/maintenance"
	"github.com/tphakala/gear-tracker/cmd/stats"
	"github.com/tphakala/gear-tracker/cmd/template"
	"github.com/tphakala/gear-tracker/internal/buildinfo"
	"github.com/tphakala/gear-tracker/internal/conf"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// RootCommand creates and returns the root command. settings is filled in
// before any subcommand runs.
func RootCommand(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	var (
		configFile string
		central    *logger.CentralLogger
	)

	rootCmd := &cobra.Command{
		Use:           "gear-tracker",
		Short:         "Gear and firearm inventory tracker",
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to config.yaml (default: per-user config directory)")
	flags.StringP("database", "D", "", "Path to the SQLite database file")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("log-level", "", "Log level: trace, debug, info, warn or error")

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		export.Command(settings),
		importcsv.Command(settings),
		template.Command(settings),
		backup.Command(settings),
		checkout.Command(settings),
		maintenance.Command(settings),
		stats.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.Load(configFile,
			conf.FlagBinding{Key: "database.path", Flag: flags.Lookup("database")},
			conf.FlagBinding{Key: "debug", Flag: flags.Lookup("debug")},
			conf.FlagBinding{Key: "logging.defaultlevel", Flag: flags.Lookup("log-level")},
		)
		if err != nil {
			return err
		}
		*settings = *loaded

		central, err = initLogging(settings)
		return err
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if central == nil {
			return nil
		}
		return central.Close()
	}

	return rootCmd
}

// initLogging installs the central logger configured by settings.
func initLogging(settings *conf.Settings) (*logger.CentralLogger, error) {
	cfg := settings.Logging
	if settings.Debug {
		cfg.DefaultLevel = "debug"
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = "debug"
			cfg.Console = &console
		}
	}

	central, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	return central, nil
}
