/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"fmt"
	"os"

	serialport "github.com/seeacloud/node-serialport"
	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <port>",
	Short: "Set the output control lines",
	Long: `Set the RTS, DTR and break output lines in one operation.

All three lines are applied together. Lines not given on the command line
keep their idle defaults: RTS and DTR asserted, no break condition.

Examples:
  serialport set /dev/ttyUSB0 --rts=false
  serialport set /dev/ttyUSB0 --dtr=false
  serialport set /dev/ttyUSB0 --break
  serialport set /dev/ttyUSB0 --rts=false --dtr=false`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		signals := serialport.DefaultSignals()
		if cmd.Flags().Changed("rts") {
			signals.RTS, _ = cmd.Flags().GetBool("rts")
		}
		if cmd.Flags().Changed("dtr") {
			signals.DTR, _ = cmd.Flags().GetBool("dtr")
		}
		if cmd.Flags().Changed("break") {
			signals.Break, _ = cmd.Flags().GetBool("break")
		}

		if err := applySignals(cmd, portPath, signals); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting lines: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Lines on %s: RTS=%s DTR=%s BREAK=%s\n", portPath,
			formatLineState(signals.RTS),
			formatLineState(signals.DTR),
			formatLineState(signals.Break))
	},
}

// applySignals opens the port, applies the output line states and waits
// for the operation to finish.
func applySignals(cmd *cobra.Command, portPath string, signals serialport.Signals) error {
	port, err := openPort(cmd, portPath)
	if err != nil {
		return err
	}
	defer closePort(port)

	done := make(chan error, 1)
	port.Set(signals, func(err error) { done <- err })
	return <-done
}

func init() {
	rootCmd.AddCommand(setCmd)

	addLineFlags(setCmd)
	setCmd.Flags().Bool("rts", true, "RTS (Request To Send) state")
	setCmd.Flags().Bool("dtr", true, "DTR (Data Terminal Ready) state")
	setCmd.Flags().Bool("break", false, "Assert the break condition")
}
