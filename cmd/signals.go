/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Display current modem line states",
	Long: `Display the current state of the modem input lines.

Shows the state of the CTS, DSR, RI and DCD lines for the specified port.
The output lines RTS and DTR are set with 'serialport set' and cannot be
read back.

Examples:
  serialport signals /dev/ttyUSB0
  serialport signals /dev/ttyACM0

Line meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		port, err := openPort(cmd, portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer closePort(port)

		state, err := getLines(port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem lines: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Modem lines for %s:\n\n", portPath)
		fmt.Printf("  CTS (Clear To Send):       %s\n", formatLineState(state.CTS))
		fmt.Printf("  DSR (Data Set Ready):      %s\n", formatLineState(state.DSR))
		fmt.Printf("  RI  (Ring Indicator):      %s\n", formatLineState(state.RI))
		fmt.Printf("  DCD (Data Carrier Detect): %s\n", formatLineState(state.DCD))
	},
}

func formatLineState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func init() {
	rootCmd.AddCommand(signalsCmd)

	addLineFlags(signalsCmd)
}
