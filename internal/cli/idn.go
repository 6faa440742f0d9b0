/*
PURPOSE:
  Defines the 'idn' subcommand.
  Helps debug connectivity before a full measurement run.

REQUIREMENTS:
  User-specified:
  - Query and print the instrument identification.

  Implementation-discovered:
  - Useful validation step before full run.

ARCHITECTURE INTEGRATION:
  - Calls: qt7600.Instrument.Identify() (via openInstrument)

ERROR HANDLING:
  - Prints error if the resource is unreachable.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  lcr-runner idn -r TCPIP::192.168.1.5::5555::SOCKET

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

var idnCmd = &cobra.Command{
	Use:   "idn",
	Short: "Query the instrument identification string (*IDN?)",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := openInstrument()
		if err != nil {
			return err
		}
		defer inst.Close()

		idn, err := inst.Identify()
		if err != nil {
			return err
		}
		fmt.Println(idn)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(idnCmd)
}
