// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"strconv"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	// UDP flags
	listenAddr string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Replay flags
	replayFile  string
	replaySpeed float64
	replayLoop  bool

	// Logging and metrics flags
	logLevel    string
	logFile     string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "heliograph",
	Short: "Wireless debug display",
	Long: `Heliograph - A terminal debug display for remotely streamed plots and logs.

Devices send newline separated text lines. Each line is one of:

  <series>::<integer>   append a sample to a plot
  <anything>+++CL       clear the log view
  <anything>+++CP       clear every plot
  <anything>+++RP:<s>   remove plot <s>
  <anything else>       append to the log view

Connection modes:
  UDP:       [--listen :5555]   (default)
  Serial:    --serial /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Replay:    --replay capture.cbor [--replay-speed 2] [--replay-loop]

For WebSocket authentication, the password is read from the HELIOGRAPH_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// UDP flags
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "listen", "l", defaultListenAddr(), "UDP listen address")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "serial", "s", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Replay flags
	rootCmd.PersistentFlags().StringVar(&replayFile, "replay", "", "Replay a capture file instead of listening")
	rootCmd.PersistentFlags().Float64Var(&replaySpeed, "replay-speed", 1.0, "Replay speed factor (0 = no delay)")
	rootCmd.PersistentFlags().BoolVar(&replayLoop, "replay-loop", false, "Restart the replay at the end of the capture")

	// Logging and metrics flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9080)")
}

func defaultListenAddr() string {
	return ":" + strconv.Itoa(telemetry.DefaultPort)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
