/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	serialport "github.com/seeacloud/node-serialport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialport",
	Short: "Serial port toolkit: list, inspect, send, listen and control",
	Long: `serialport is a command line toolkit for working with serial devices.

It can enumerate ports, show USB metadata, send and capture data, drive
and monitor modem control lines, reset hung USB adapters, and open a
fully interactive terminal session.

Line parameters default to 115200 8N1 and can be changed per command or
through a config file (default: $HOME/.serialport.yaml):

  baud: 9600
  binding: portable

Most commands talk to the device through the Linux termios binding; pass
--binding portable to use the cross-platform binding instead.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialport.yaml)")
	rootCmd.PersistentFlags().String("binding", "", "device binding: termios or portable (default termios)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	viper.BindPFlag("binding", rootCmd.PersistentFlags().Lookup("binding"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search for .serialport.yaml in the home directory and the
		// current directory.
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialport")
	}

	viper.SetEnvPrefix("SERIALPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// selectBinding returns the binding chosen by --binding or the config
// file. The termios binding is the default.
func selectBinding() (serialport.Binding, error) {
	switch name := viper.GetString("binding"); name {
	case "", "termios":
		return serialport.NewTermiosBinding(), nil
	case "portable":
		return serialport.NewPortableBinding(), nil
	default:
		return nil, fmt.Errorf("unknown binding %q (valid: termios, portable)", name)
	}
}

// addLineFlags registers the line parameter flags shared by every command
// that opens a port.
func addLineFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	cmd.Flags().Int("data-bits", 8, "Data bits: 5, 6, 7 or 8")
	cmd.Flags().Int("stop-bits", 1, "Stop bits: 1 or 2")
	cmd.Flags().String("parity", "none", "Parity: none, odd, even, mark, space")
	cmd.Flags().StringSliceP("flow-control", "f", nil, "Flow control flags (comma-separated: xon,xoff,xany,rtscts)")
}

// resolveBaud returns the --baud flag value, or the config file's baud
// entry when the flag was left at its default.
func resolveBaud(cmd *cobra.Command) int {
	if !cmd.Flags().Changed("baud") && viper.IsSet("baud") {
		return viper.GetInt("baud")
	}
	baud, _ := cmd.Flags().GetInt("baud")
	return baud
}

// lineOptions translates the shared line parameter flags into port
// options. Settings are validated again by the library; this only rejects
// names that cannot be parsed at all.
func lineOptions(cmd *cobra.Command) ([]serialport.Option, error) {
	dataBits, _ := cmd.Flags().GetInt("data-bits")
	stopBits, _ := cmd.Flags().GetInt("stop-bits")
	parityName, _ := cmd.Flags().GetString("parity")
	flowNames, _ := cmd.Flags().GetStringSlice("flow-control")

	parity, err := serialport.ParseParity(parityName)
	if err != nil {
		return nil, err
	}
	flow, err := serialport.ParseFlowControl(flowNames)
	if err != nil {
		return nil, err
	}

	opts := []serialport.Option{
		serialport.WithBaudRate(resolveBaud(cmd)),
		serialport.WithDataBits(dataBits),
		serialport.WithStopBits(stopBits),
		serialport.WithParity(parity),
	}
	if len(flow) > 0 {
		opts = append(opts, serialport.WithFlowControl(flow...))
	}
	return opts, nil
}

// openPort opens path with the shared line flags applied and blocks until
// the open has completed. The caller owns the returned port and should
// release it with closePort.
func openPort(cmd *cobra.Command, path string, extra ...serialport.Option) (*serialport.Port, error) {
	opts, err := lineOptions(cmd)
	if err != nil {
		return nil, err
	}
	binding, err := selectBinding()
	if err != nil {
		return nil, err
	}

	opened := make(chan error, 1)
	opts = append(opts,
		serialport.WithBinding(binding),
		serialport.WithOpenCallback(func(err error) { opened <- err }),
	)
	opts = append(opts, extra...)

	port, err := serialport.New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := <-opened; err != nil {
		return nil, err
	}
	return port, nil
}

// closePort closes port and waits until the device has been released, so
// commands do not exit with the descriptor still held.
func closePort(port *serialport.Port) {
	done := make(chan struct{})
	port.Close(func(error) { close(done) })
	<-done
}
