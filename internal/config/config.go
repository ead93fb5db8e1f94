package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Download    DownloadConfig    `mapstructure:"download" yaml:"download"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Ledger      LedgerConfig      `mapstructure:"ledger" yaml:"ledger"`
	Converter   ConverterConfig   `mapstructure:"converter" yaml:"converter"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// DownloadConfig contains HTTP download settings
type DownloadConfig struct {
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries" yaml:"max_retries"`
	AsBrowser   bool          `mapstructure:"as_browser" yaml:"as_browser"`
	InsecureTLS bool          `mapstructure:"insecure_tls" yaml:"insecure_tls"`
}

// ConcurrencyConfig contains conversion worker settings
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// LedgerConfig contains download ledger settings
type LedgerConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// ConverterConfig contains external conversion engine settings
type ConverterConfig struct {
	Command      string    `mapstructure:"command" yaml:"command"`
	LibVer       string    `mapstructure:"libver" yaml:"libver"`
	Temperatures []float64 `mapstructure:"temperatures" yaml:"temperatures"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Download.Timeout < time.Second {
		c.Download.Timeout = DefaultDownloadTimeout
	}
	if c.Download.MaxRetries < 0 {
		c.Download.MaxRetries = DefaultMaxRetries
	}
	if c.Converter.Command == "" {
		c.Converter.Command = DefaultConverterCommand
	}
	switch c.Converter.LibVer {
	case "", "earliest", "latest":
	default:
		return fmt.Errorf("invalid converter.libver %q: must be \"earliest\" or \"latest\"", c.Converter.LibVer)
	}
	if c.Converter.LibVer == "" {
		c.Converter.LibVer = DefaultLibVer
	}
	for _, t := range c.Converter.Temperatures {
		if t <= 0 {
			return fmt.Errorf("invalid converter.temperatures: %g K", t)
		}
	}
	return nil
}
