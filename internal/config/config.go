/*
PURPOSE:
  Defines the configuration structure and loading logic for lcr-runner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the instrument resource, timeouts, and the
    full measurement setup (frequency, parameters, level, bias, range,
    delay, accuracy).

  Implementation-discovered:
  - Needs to support YAML parsing.
  - CLI flags override file values; the file overrides defaults.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default file is not an error (falls back to defaults).

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (1 kHz, CS/DF, auto range, 5s timeout).

USAGE:
  cfg, err := config.Load("lcr_runner.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update Load() defaults.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for lcr-runner.
type Config struct {
	// Resource is the VISA-style resource string, e.g.
	// "TCPIP::192.168.1.5::5555::SOCKET" or "PROLOGIX::/dev/ttyUSB0::10".
	Resource string `yaml:"resource"`

	// Timeout bounds a single command/reply exchange.
	Timeout time.Duration `yaml:"timeout"`

	// SerialBaud applies to ASRL and PROLOGIX resources.
	SerialBaud int `yaml:"serial_baud"`

	// Measurement setup, applied before the run.
	FrequencyHz    float64 `yaml:"frequency_hz"`
	PrimaryParam   string  `yaml:"primary_param"`
	SecondaryParam string  `yaml:"secondary_param"`
	ACLevel        float64 `yaml:"ac_level"`
	Bias           string  `yaml:"bias"`
	AutoRange      bool    `yaml:"auto_range"`
	Accuracy       string  `yaml:"accuracy"`
	DelayMS        int     `yaml:"delay_ms"`

	// SettleTime is a client-side pause between configuring and the
	// first trigger, mirroring the instrument's panel behavior.
	SettleTime time.Duration `yaml:"settle_time"`

	// Count is the number of measurements to take; negative means run
	// until interrupted.
	Count    int           `yaml:"count"`
	Interval time.Duration `yaml:"interval"`

	OutputDir  string `yaml:"output_dir"`
	OutputFile string `yaml:"output_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Resource:       "TCPIP::localhost::5555::SOCKET",
		Timeout:        5 * time.Second,
		SerialBaud:     9600,
		FrequencyHz:    1000,
		PrimaryParam:   "CS",
		SecondaryParam: "DF",
		ACLevel:        1.0,
		Bias:           "OFF",
		AutoRange:      true,
		Accuracy:       "MEDIUM",
		DelayMS:        0,
		SettleTime:     500 * time.Millisecond,
		Count:          1,
		Interval:       time.Second,
		OutputDir:      ".",
		OutputFile:     "measurements.csv",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"lcr_runner.yaml", "lcr.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
