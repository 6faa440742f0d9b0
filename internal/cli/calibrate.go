/*
PURPOSE:
  Defines the 'calibrate' subcommand.
  Starts the instrument-side open/short/quick calibration procedures.

REQUIREMENTS:
  User-specified:
  - Expose the three calibration commands the meter provides.

  Implementation-discovered:
  - Calibration runs on the instrument itself; success/failure shows up
    in the instrument status, so the command only starts it and returns.

ARCHITECTURE INTEGRATION:
  - Calls: qt7600.Instrument Calibrate* methods

ERROR HANDLING:
  - Transport errors returned directly; there is nothing to retry.

IMPLEMENTATION RULES:
  - Positional mode argument, validated with cobra's OnlyValidArgs.

USAGE:
  lcr-runner calibrate open
  lcr-runner calibrate short
  lcr-runner calibrate quick

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - None expected.
*/

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shar0486/ForLCRmeter/internal/output"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate [open|short|quick]",
	Short: "Start an open, short, or quick open/short calibration",
	Long: `Starts the selected calibration procedure on the meter. The procedure runs
on the instrument side; fixture prompts appear on its front panel. Check the
instrument status registers for the outcome.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"open", "short", "quick"},
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()

		var calErr error
		switch args[0] {
		case "open":
			calErr = inst.CalibrateOpen()
		case "short":
			calErr = inst.CalibrateShort()
		case "quick":
			calErr = inst.CalibrateQuickOpenShort()
		}
		if calErr != nil {
			return calErr
		}

		output.Logger.Info("Calibration started", "mode", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
}

// loadcor groups the load-correction commands: nominals, measure, on,
// off, fetch. Same one-command-per-call pattern as calibrate.
var loadcorCmd = &cobra.Command{
	Use:   "loadcor",
	Short: "Manage load correction",
}

var loadcorNominalsCmd = &cobra.Command{
	Use:   "nominals <primary> <secondary>",
	Short: "Set nominal primary/secondary values for load correction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		primary, secondary, err := parseNominals(args[0], args[1])
		if err != nil {
			return err
		}

		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()

		if err := inst.LoadCorrectionNominals(primary, secondary); err != nil {
			return err
		}
		output.Logger.Info("Load correction nominals set", "primary", primary, "secondary", secondary)
		return nil
	},
}

var loadcorMeasureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Perform the load correction measurement",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()
		return inst.LoadCorrectionMeasure()
	},
}

var loadcorOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable load correction (requires a prior measurement)",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()
		return inst.LoadCorrectionOn()
	},
}

var loadcorOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable load correction",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()
		return inst.LoadCorrectionOff()
	},
}

var loadcorFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch load correction status and measured values",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()

		res, err := inst.LoadCorrectionFetch()
		if err != nil {
			return err
		}
		cmd.Println(res)
		return nil
	},
}

func parseNominals(p, s string) (float64, float64, error) {
	primary, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad primary nominal %q: %w", p, err)
	}
	secondary, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad secondary nominal %q: %w", s, err)
	}
	return primary, secondary, nil
}

func init() {
	loadcorCmd.AddCommand(loadcorNominalsCmd, loadcorMeasureCmd, loadcorOnCmd, loadcorOffCmd, loadcorFetchCmd)
	rootCmd.AddCommand(loadcorCmd)
}
