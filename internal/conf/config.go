// Package conf loads gear tracker settings from config.yaml and GEARTRACKER_* environment variables.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
)

const (
	// AppDirName is the per-user directory holding config and database
	AppDirName = "gear_tracker"

	// DatabaseFileName is the default SQLite file name
	DatabaseFileName = "tracker.db"

	configFileName = "config"
	configFileType = "yaml"
	osWindows      = "windows"
)

// Settings contains all configuration options for the gear tracker.
type Settings struct {
	Debug bool `yaml:"debug"`

	Database DatabaseSettings     `yaml:"database"`
	Logging  logger.LoggingConfig `yaml:"logging"`
	Import   ImportSettings       `yaml:"import"`
	Export   ExportSettings       `yaml:"export"`
}

// DatabaseSettings controls the SQLite store
type DatabaseSettings struct {
	Path               string        `yaml:"path"`                                // database file, empty means <config dir>/tracker.db
	SlowQueryThreshold time.Duration `yaml:"slowquerythreshold" validate:"gte=0"` // queries slower than this are logged at WARN
	BusyTimeout        time.Duration `yaml:"busytimeout" validate:"gte=0"`        // SQLite busy timeout
}

// ImportSettings controls CSV restore defaults
type ImportSettings struct {
	DefaultResolution  string `yaml:"defaultresolution" validate:"oneof=skip overwrite rename"` // duplicate handling when none is given
	AllowNegativeStock bool   `yaml:"allownegativestock"`                                       // permit loadout checkouts that drive stock below zero
}

// ExportSettings controls CSV backup output
type ExportSettings struct {
	Version string `yaml:"version" validate:"required"` // value written to the METADATA version column
}

// FlagBinding maps a command line flag onto a config key. A flag that was
// set on the command line takes precedence over the file and environment.
type FlagBinding struct {
	Key  string
	Flag *pflag.Flag
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables.
// When configFile is empty the default config paths are searched and a
// default config.yaml is created in the first one if none exists.
func Load(configFile string, flags ...FlagBinding) (*Settings, error) {
	v := viper.New()

	for _, binding := range flags {
		if binding.Flag == nil {
			continue
		}
		if err := v.BindPFlag(binding.Key, binding.Flag); err != nil {
			return nil, errors.New(fmt.Errorf("error binding flag %s: %w", binding.Flag.Name, err)).
				Component("configuration").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}

	if err := initViper(v, configFile); err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "init-viper").
			Build()
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	if settings.Database.Path == "" {
		path, err := DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
		settings.Database.Path = path
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// initViper sets defaults, binds the environment and reads the config file.
func initViper(v *viper.Viper, configFile string) error {
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		return err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(v, configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the defaults to dir/config.yaml and reads it back.
func createDefaultConfig(v *viper.Viper, dir string) error {
	configPath := filepath.Join(dir, configFileName+"."+configFileType)

	data, err := yaml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("error writing default config file: %w", err)
	}

	logger.Global().Module("configuration").Info("created default config file",
		logger.String("path", configPath))

	v.SetConfigFile(configPath)
	return v.ReadInConfig()
}

// GetSettings returns the most recently loaded settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically via a temp file and rename.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer func() { _ = os.Remove(tempFileName) }()

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return errors.FileError(fmt.Errorf("error replacing config file: %w", err), configPath, int64(len(yamlData)))
	}

	return nil
}

// ConfigDir returns the per-user gear tracker directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.New(err).
			Component("configuration").
			Category(errors.CategorySystem).
			Context("operation", "get-user-config-dir").
			Build()
	}
	return filepath.Join(base, AppDirName), nil
}

// DefaultDatabasePath returns <user config dir>/gear_tracker/tracker.db
func DefaultDatabasePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
// If config.yaml is found in one of them, only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	userDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{userDir}
	default:
		configPaths = []string{userDir, "/etc/" + AppDirName}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, configFileName+"."+configFileType)); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}
