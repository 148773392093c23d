/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	serialport "github.com/seeacloud/node-serialport"
	"github.com/spf13/cobra"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Stream incoming serial data to stdout",
	Long: `Stream incoming data from a serial port to stdout.

This command opens the specified serial port and writes every received byte
to stdout until interrupted or the device disconnects. Output is raw by
default, which makes it suitable for piping:

  serialport listen /dev/ttyUSB0 > dump.bin
  serialport listen /dev/ttyUSB0 --hex
  serialport listen /dev/ttyUSB0 --baud 9600 --timestamps

Status messages go to stderr, so stdout stays clean. For an interactive
terminal with send support, use 'serialport connect' instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		hexMode, _ := cmd.Flags().GetBool("hex")
		timestamps, _ := cmd.Flags().GetBool("timestamps")

		if err := runListen(cmd, portPath, hexMode, timestamps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	addLineFlags(listenCmd)
	listenCmd.Flags().BoolP("hex", "x", false, "Print data as space-separated hex bytes")
	listenCmd.Flags().Bool("timestamps", false, "Prefix each received chunk with a timestamp")
}

func runListen(cmd *cobra.Command, portPath string, hexMode, timestamps bool) error {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	disconnected := make(chan error, 1)

	// The data consumer runs on the port's delivery goroutine, so writes
	// to out are already serialized.
	port, err := openPort(cmd, portPath,
		serialport.WithDataConsumer(func(data []byte) {
			writeChunk(out, data, hexMode, timestamps)
			out.Flush()
		}),
		serialport.WithDisconnectHandler(func(err error) {
			select {
			case disconnected <- err:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}
	defer closePort(port)

	settings := port.Settings()
	log.Info().
		Str("port", portPath).
		Int("baud", settings.BaudRate).
		Msg("listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
		log.Info().Str("port", portPath).Msg("interrupted")
		return nil
	case err := <-disconnected:
		return err
	}
}

func writeChunk(w io.Writer, data []byte, hexMode, timestamps bool) {
	if timestamps {
		fmt.Fprintf(w, "[%s] ", time.Now().Format("15:04:05.000"))
	}
	if hexMode {
		fmt.Fprintf(w, "% X\n", data)
		return
	}
	w.Write(data)
	if timestamps {
		// Keep chunks line-separated when each one carries a timestamp.
		fmt.Fprintln(w)
	}
}
