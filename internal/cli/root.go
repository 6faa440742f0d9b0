/*
PURPOSE:
  Defines the root Cobra command for the lcr-runner CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config and --resource.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Every instrument subcommand needs the same load-config /
    apply-overrides / open dance, so it lives here once.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/lcr-runner/main.go
  - Calls: Child commands (measure, idn, status, reset, calibrate, loadcor)
  - Modifies: Global configuration state (temporarily, until passed down).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/lcr-runner/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shar0486/ForLCRmeter/internal/config"
	"github.com/shar0486/ForLCRmeter/internal/qt7600"
	"github.com/shar0486/ForLCRmeter/internal/visa"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	resourceOverride string
	timeoutOverride  time.Duration

	rootCmd = &cobra.Command{
		Use:   "lcr-runner",
		Short: "Control and measurement tool for the QuadTech QT-7600 LCR meter",
		Long: `lcr-runner drives a QT-7600 LCR meter over GPIB (Prologix), serial, or a
raw TCP SCPI socket. Use 'measure --help' for measurement options.`,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./lcr_runner.yaml)")
	rootCmd.PersistentFlags().StringVarP(&resourceOverride, "resource", "r", "", "VISA resource string (e.g. TCPIP::192.168.1.5::5555::SOCKET)")
	rootCmd.PersistentFlags().DurationVar(&timeoutOverride, "timeout", 0, "per-exchange I/O timeout")
}

// loadConfig loads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if resourceOverride != "" {
		cfg.Resource = resourceOverride
	}
	if timeoutOverride > 0 {
		cfg.Timeout = timeoutOverride
	}
	return cfg, nil
}

// openInstrument loads the config and opens a session to the meter.
// The caller owns the returned instrument and must Close it.
func openInstrument() (*qt7600.Instrument, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	inst := qt7600.New(cfg.Resource, visa.Options{
		Timeout:    cfg.Timeout,
		SerialBaud: cfg.SerialBaud,
	})
	if err := inst.Open(); err != nil {
		return nil, err
	}
	return inst, nil
}
