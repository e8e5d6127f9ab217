// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/gear-tracker/internal/logger"
)

// Default setting values shared by viper defaults and the generated config.yaml.
const (
	DefaultSlowQueryThreshold = 200 * time.Millisecond
	DefaultBusyTimeout        = 5 * time.Second
	DefaultResolution         = "skip"
	DefaultExportVersion      = "1.0"
)

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("database.path", "")
	v.SetDefault("database.slowquerythreshold", DefaultSlowQueryThreshold)
	v.SetDefault("database.busytimeout", DefaultBusyTimeout)

	v.SetDefault("logging.defaultlevel", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.fileoutput.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.fileoutput.path", logger.DefaultLogPath)
	v.SetDefault("logging.fileoutput.level", logger.DefaultLogLevel)

	v.SetDefault("import.defaultresolution", DefaultResolution)
	v.SetDefault("import.allownegativestock", false)

	v.SetDefault("export.version", DefaultExportVersion)
}

// DefaultSettings returns the settings written to a freshly created config.yaml.
func DefaultSettings() *Settings {
	return &Settings{
		Database: DatabaseSettings{
			SlowQueryThreshold: DefaultSlowQueryThreshold,
			BusyTimeout:        DefaultBusyTimeout,
		},
		Logging: logger.LoggingConfig{
			DefaultLevel: logger.DefaultLogLevel,
			Timezone:     "Local",
			Console: &logger.ConsoleOutput{
				Enabled: logger.DefaultConsoleEnabled,
				Level:   logger.DefaultLogLevel,
			},
			FileOutput: &logger.FileOutput{
				Enabled: logger.DefaultFileEnabled,
				Path:    logger.DefaultLogPath,
				Level:   logger.DefaultLogLevel,
			},
		},
		Import: ImportSettings{
			DefaultResolution: DefaultResolution,
		},
		Export: ExportSettings{
			Version: DefaultExportVersion,
		},
	}
}
