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

// dtrCmd represents the dtr command
var dtrCmd = &cobra.Command{
	Use:   "dtr <port> <state>",
	Short: "Control the DTR (Data Terminal Ready) line",
	Long: `Manually set the DTR (Data Terminal Ready) line state.

The DTR line indicates that the terminal is ready for communication.
The other output lines go to their idle defaults (RTS asserted, no
break); use 'serialport set' to control all three lines at once.

Examples:
  serialport dtr /dev/ttyUSB0 high
  serialport dtr /dev/ttyUSB0 low
  serialport dtr /dev/ttyUSB0 on
  serialport dtr /dev/ttyUSB0 off

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		stateArg := args[1]

		state, err := parseSignalState(stateArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		signals := serialport.DefaultSignals()
		signals.DTR = state

		if err := applySignals(cmd, portPath, signals); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting DTR: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("DTR set to %s on %s\n", formatLineState(state), portPath)
	},
}

func init() {
	rootCmd.AddCommand(dtrCmd)

	addLineFlags(dtrCmd)
}
