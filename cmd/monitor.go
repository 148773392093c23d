/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	serialport "github.com/seeacloud/node-serialport"
	"github.com/spf13/cobra"
)

var (
	monitorLineNames []string
	monitorInterval  time.Duration
	monitorTimeout   time.Duration
)

// lineMask selects which modem input lines a command cares about.
type lineMask uint8

const (
	maskCTS lineMask = 1 << iota
	maskDSR
	maskRI
	maskDCD
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Monitor modem line changes",
	Long: `Monitor modem control line changes in real-time.

Polls the selected input lines and reports when they change state.
Press Ctrl+C to stop.

Examples:
  serialport monitor /dev/ttyUSB0
  serialport monitor /dev/ttyUSB0 --signals cts,dsr
  serialport monitor /dev/ttyUSB0 --signals dcd --timeout 30s

Available lines: cts, dsr, ri, dcd`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		// Parse the line mask from flags
		mask, err := parseLineMask(monitorLineNames)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing signals: %v\n", err)
			os.Exit(1)
		}

		// Setup signal handler for Ctrl+C
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		port, err := openPort(cmd, portPath,
			serialport.WithDisconnectHandler(func(err error) {
				fmt.Fprintf(os.Stderr, "\n%v\n", err)
				cancel()
			}),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer closePort(port)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("\nStopping monitor...")
			cancel()
		}()

		fmt.Printf("Monitoring lines on %s (lines: %s)\n", portPath, strings.Join(monitorLineNames, ", "))
		fmt.Println("Press Ctrl+C to stop")

		// Show initial state
		initial, err := getLines(port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading initial state: %v\n", err)
			os.Exit(1)
		}
		printLineState("Initial", initial, mask)

		last := initial
		lastChange := time.Now()
		ticker := time.NewTicker(monitorInterval)
		defer ticker.Stop()

		// Monitor loop
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			state, err := getLines(port)
			if err != nil {
				// The disconnect handler already reported the cause.
				if ctx.Err() != nil {
					return
				}
				fmt.Fprintf(os.Stderr, "Error reading lines: %v\n", err)
				os.Exit(1)
			}

			changed := diffLines(last, state) & mask
			last = state

			if changed != 0 {
				printLineChange(state, changed)
				lastChange = time.Now()
				continue
			}

			if monitorTimeout > 0 && time.Since(lastChange) >= monitorTimeout {
				fmt.Printf("[%s] Timeout - no line changes\n", time.Now().Format("15:04:05"))
				lastChange = time.Now()
			}
		}
	},
}

// getLines reads the modem lines, turning the asynchronous Get into a
// synchronous call for command-line use.
func getLines(port *serialport.Port) (serialport.LineState, error) {
	type result struct {
		state serialport.LineState
		err   error
	}
	ch := make(chan result, 1)
	port.Get(func(state serialport.LineState, err error) {
		ch <- result{state, err}
	})
	r := <-ch
	return r.state, r.err
}

func parseLineMask(names []string) (lineMask, error) {
	if len(names) == 0 {
		return maskCTS | maskDSR | maskRI | maskDCD, nil
	}

	var mask lineMask
	for _, name := range names {
		switch strings.ToLower(name) {
		case "cts":
			mask |= maskCTS
		case "dsr":
			mask |= maskDSR
		case "ri":
			mask |= maskRI
		case "dcd":
			mask |= maskDCD
		default:
			return 0, fmt.Errorf("unknown line: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	return mask, nil
}

// diffLines reports which input lines differ between two readings.
func diffLines(a, b serialport.LineState) lineMask {
	var changed lineMask
	if a.CTS != b.CTS {
		changed |= maskCTS
	}
	if a.DSR != b.DSR {
		changed |= maskDSR
	}
	if a.RI != b.RI {
		changed |= maskRI
	}
	if a.DCD != b.DCD {
		changed |= maskDCD
	}
	return changed
}

func printLineState(prefix string, state serialport.LineState, mask lineMask) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s state:\n", timestamp, prefix)
	if mask&maskCTS != 0 {
		fmt.Printf("  CTS: %s\n", formatLineState(state.CTS))
	}
	if mask&maskDSR != 0 {
		fmt.Printf("  DSR: %s\n", formatLineState(state.DSR))
	}
	if mask&maskRI != 0 {
		fmt.Printf("  RI:  %s\n", formatLineState(state.RI))
	}
	if mask&maskDCD != 0 {
		fmt.Printf("  DCD: %s\n", formatLineState(state.DCD))
	}
	fmt.Println()
}

func printLineChange(state serialport.LineState, changed lineMask) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] Line change detected:\n", timestamp)
	if changed&maskCTS != 0 {
		fmt.Printf("  CTS: %s\n", formatLineState(state.CTS))
	}
	if changed&maskDSR != 0 {
		fmt.Printf("  DSR: %s\n", formatLineState(state.DSR))
	}
	if changed&maskRI != 0 {
		fmt.Printf("  RI:  %s\n", formatLineState(state.RI))
	}
	if changed&maskDCD != 0 {
		fmt.Printf("  DCD: %s\n", formatLineState(state.DCD))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	addLineFlags(monitorCmd)
	monitorCmd.Flags().StringSliceVarP(&monitorLineNames, "signals", "s", []string{"cts", "dsr", "ri", "dcd"},
		"Lines to monitor (comma-separated: cts,dsr,ri,dcd)")
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 100*time.Millisecond,
		"Polling interval")
	monitorCmd.Flags().DurationVarP(&monitorTimeout, "timeout", "t", 0,
		"Report when no line has changed for this long (0 = never)")
}
