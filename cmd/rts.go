/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	serialport "github.com/seeacloud/node-serialport"
	"github.com/spf13/cobra"
)

// rtsCmd represents the rts command
var rtsCmd = &cobra.Command{
	Use:   "rts <port> <state>",
	Short: "Control the RTS (Request To Send) line",
	Long: `Manually set the RTS (Request To Send) line state.

The RTS line can be used for software flow control or custom signaling.
The other output lines go to their idle defaults (DTR asserted, no
break); use 'serialport set' to control all three lines at once.

Examples:
  serialport rts /dev/ttyUSB0 high
  serialport rts /dev/ttyUSB0 low
  serialport rts /dev/ttyUSB0 on
  serialport rts /dev/ttyUSB0 off

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
		signals.RTS = state

		if err := applySignals(cmd, portPath, signals); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting RTS: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("RTS set to %s on %s\n", formatLineState(state), portPath)
	},
}

func parseSignalState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "high", "on", "true", "1":
		return true, nil
	case "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: high, low, on, off, true, false, 1, 0)", state)
	}
}

func init() {
	rootCmd.AddCommand(rtsCmd)

	addLineFlags(rtsCmd)
}
