/*
PURPOSE:
  Defines the 'status' subcommand.
  Reads the IEEE 488.2 status registers and optionally runs a self-test.

REQUIREMENTS:
  User-specified:
  - Surface *STB? and *ESR? without hand-typing SCPI.

  Implementation-discovered:
  - *ESR? is a destructive read; worth flagging in the output.

ARCHITECTURE INTEGRATION:
  - Calls: qt7600.Instrument StatusByte/EventStatus/SelfTest

ERROR HANDLING:
  - Returns the first failing query's error.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  lcr-runner status [--self-test]

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

	"github.com/spf13/cobra"
)

var runSelfTest bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the status byte and event status registers",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()

		stb, err := inst.StatusByte()
		if err != nil {
			return err
		}
		fmt.Printf("status byte (*STB?):  0x%02x\n", stb)

		esr, err := inst.EventStatus()
		if err != nil {
			return err
		}
		fmt.Printf("event status (*ESR?): 0x%02x (register cleared by this read)\n", esr)

		if runSelfTest {
			res, err := inst.SelfTest()
			if err != nil {
				return err
			}
			fmt.Printf("self test (*TST?):    %s\n", res)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&runSelfTest, "self-test", false, "also run the instrument self-test (*TST?)")
	rootCmd.AddCommand(statusCmd)
}
