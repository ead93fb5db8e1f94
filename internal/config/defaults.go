package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Download defaults
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultMaxRetries      = 3
	DefaultAsBrowser       = true

	// Concurrency defaults
	DefaultWorkers = 4

	// Ledger defaults
	DefaultLedgerEnabled = true

	// Converter defaults
	DefaultConverterCommand = "nucdata-engine"
	DefaultLibVer           = "earliest"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultTemperatures are the processing temperatures in Kelvin used when
// converting ENDF sources.
var DefaultTemperatures = []float64{250, 293.6, 600, 900, 1200, 2500}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nucdata"
	}
	return filepath.Join(home, ".nucdata")
}

// LedgerDir returns the download ledger directory path
func LedgerDir() string {
	return filepath.Join(ConfigDir(), "ledger")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Download: DownloadConfig{
			Timeout:     DefaultDownloadTimeout,
			MaxRetries:  DefaultMaxRetries,
			AsBrowser:   DefaultAsBrowser,
			InsecureTLS: false,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
		},
		Ledger: LedgerConfig{
			Enabled:   DefaultLedgerEnabled,
			Directory: LedgerDir(),
		},
		Converter: ConverterConfig{
			Command:      DefaultConverterCommand,
			LibVer:       DefaultLibVer,
			Temperatures: DefaultTemperatures,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
