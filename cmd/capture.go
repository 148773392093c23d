/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	serialport "github.com/seeacloud/node-serialport"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a rotating file",
	Long: `Capture incoming serial data to a file for later parsing.

Writes every received byte to the output file until interrupted (Ctrl+C)
or the device disconnects. The file is appended to, so captures can be
resumed without overwriting existing data, and rotates automatically once
it reaches --max-size megabytes.

Example usage:
  serialport capture /dev/ttyUSB0 data.log
  serialport capture /dev/ttyUSB0 output.txt --baud 9600
  serialport capture /dev/ttyUSB0 capture.log --console
  serialport capture /dev/ttyUSB0 capture.log --max-size 10 --max-backups 5 --compress`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		outputPath := args[1]

		if err := runCapture(cmd, portPath, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	addLineFlags(captureCmd)
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
	captureCmd.Flags().Int("max-size", 100, "Rotate the capture file after this many megabytes")
	captureCmd.Flags().Int("max-backups", 0, "Rotated capture files to keep (0 = all)")
	captureCmd.Flags().Bool("compress", false, "Compress rotated capture files")
}

func runCapture(cmd *cobra.Command, portPath, outputPath string) error {
	showConsole, _ := cmd.Flags().GetBool("console")
	maxSize, _ := cmd.Flags().GetInt("max-size")
	maxBackups, _ := cmd.Flags().GetInt("max-backups")
	compress, _ := cmd.Flags().GetBool("compress")

	// The capture file appends across runs and rotates at max-size.
	out := &lumberjack.Logger{
		Filename:   outputPath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   compress,
	}
	defer out.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var bytesWritten int64

	// The first fatal capture error wins; everything after it is shutdown
	// noise.
	firstErr := make(chan error, 1)
	fail := func(err error) {
		select {
		case firstErr <- err:
		default:
		}
		cancel()
	}

	port, err := openPort(cmd, portPath,
		serialport.WithDataConsumer(func(data []byte) {
			n, err := out.Write(data)
			atomic.AddInt64(&bytesWritten, int64(n))
			if err != nil {
				fail(fmt.Errorf("write error: %w", err))
				return
			}
			if showConsole {
				os.Stdout.Write(data)
			}
		}),
		serialport.WithDisconnectHandler(func(err error) {
			fail(err)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}

	// Setup signal handling for clean shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", portPath, outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	startTime := time.Now()

	select {
	case <-sigChan:
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")
	case <-ctx.Done():
	}

	// Stop the data flow before summarizing.
	closePort(port)

	duration := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n",
		atomic.LoadInt64(&bytesWritten), duration.Round(time.Millisecond))

	select {
	case err := <-firstErr:
		return err
	default:
		return nil
	}
}
