/*
PURPOSE:
  Defines the 'measure' subcommand.
  Configures the meter and runs the measurement loop.

REQUIREMENTS:
  User-specified:
  - Take readings and record them.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if config load fails or engine run fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Engine.Run.

USAGE:
  lcr-runner measure --frequency 10000 --primary CP --count 100

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shar0486/ForLCRmeter/internal/engine"
)

var (
	frequencyOverride float64
	primaryOverride   string
	secondaryOverride string
	acLevelOverride   float64
	biasOverride      string
	accuracyOverride  string
	delayOverride     int
	countOverride     int
	intervalOverride  time.Duration
	outputDirOverride string
	outputOverride    string
	noAutoRange       bool
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Configure the meter and take readings",
	Long: `Configures the QT-7600 from the config file (plus any flag overrides),
then triggers and fetches readings in a loop. Every reading is appended to a
CSV file and a JSON-lines file in the output directory as it arrives, so an
interrupted run keeps everything collected so far.`,
	Example: `  # One reading with defaults (uses lcr_runner.yaml)
  lcr-runner measure

  # Capacitance/dissipation at 10 kHz, 100 readings 2s apart
  lcr-runner measure --frequency 10000 --primary CS --secondary DF \
    --count 100 --interval 2s

  # Run until interrupted, writing to ./data
  lcr-runner measure --count -1 -o ./data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config (root flags already applied)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// 2. Overrides
		if cmd.Flags().Changed("frequency") {
			cfg.FrequencyHz = frequencyOverride
		}
		if primaryOverride != "" {
			cfg.PrimaryParam = primaryOverride
		}
		if secondaryOverride != "" {
			cfg.SecondaryParam = secondaryOverride
		}
		if cmd.Flags().Changed("ac-level") {
			cfg.ACLevel = acLevelOverride
		}
		if biasOverride != "" {
			cfg.Bias = biasOverride
		}
		if accuracyOverride != "" {
			cfg.Accuracy = accuracyOverride
		}
		if cmd.Flags().Changed("delay") {
			cfg.DelayMS = delayOverride
		}
		if cmd.Flags().Changed("count") {
			cfg.Count = countOverride
		}
		if cmd.Flags().Changed("interval") {
			cfg.Interval = intervalOverride
		}
		if outputDirOverride != "" {
			cfg.OutputDir = outputDirOverride
		}
		if outputOverride != "" {
			cfg.OutputFile = outputOverride
		}
		if noAutoRange {
			cfg.AutoRange = false
		}

		// 3. Execution
		return engine.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().Float64Var(&frequencyOverride, "frequency", 0, "Test frequency in Hz")
	measureCmd.Flags().StringVar(&primaryOverride, "primary", "", "Primary parameter (RS RP LS LP CS CP DF Q Z Y P ESR GP XS BP)")
	measureCmd.Flags().StringVar(&secondaryOverride, "secondary", "", "Secondary parameter (same codes, or N for none)")
	measureCmd.Flags().Float64Var(&acLevelOverride, "ac-level", 0, "AC test signal level")
	measureCmd.Flags().StringVar(&biasOverride, "bias", "", "Bias mode (OFF, INT, EXT)")
	measureCmd.Flags().StringVar(&accuracyOverride, "accuracy", "", "Accuracy level (FAST, MEDIUM, SLOW)")
	measureCmd.Flags().IntVar(&delayOverride, "delay", 0, "Measurement delay in milliseconds")
	measureCmd.Flags().IntVarP(&countOverride, "count", "n", 0, "Number of readings (-1 = until interrupted)")
	measureCmd.Flags().DurationVar(&intervalOverride, "interval", 0, "Pause between readings")
	measureCmd.Flags().StringVarP(&outputDirOverride, "output-dir", "o", "", "Output directory for results (CSV/JSON)")
	measureCmd.Flags().StringVar(&outputOverride, "output-file", "", "CSV output filename")
	measureCmd.Flags().BoolVar(&noAutoRange, "no-auto-range", false, "Disable auto-ranging")
}
