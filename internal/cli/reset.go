package cli

import (
	"github.com/spf13/cobra"

	"github.com/shar0486/ForLCRmeter/internal/output"
)

var alsoClear bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the instrument to its default state (*RST)",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()

		if err := inst.Reset(); err != nil {
			return err
		}
		output.Logger.Info("Instrument reset")

		if alsoClear {
			if err := inst.ClearStatus(); err != nil {
				return err
			}
			output.Logger.Info("Status registers cleared")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&alsoClear, "clear", false, "also clear the status registers (*CLS)")
	rootCmd.AddCommand(resetCmd)
}
