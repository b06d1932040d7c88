// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/spf13/cobra"
)

var rawLogHex bool

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display received payloads in human-readable format",
	Long: `Continuously print every received payload as it arrives.

Each payload is shown with a timestamp, its source and every line classified
the way the display would handle it: data point, command or log line. Data
lines that fall back to log lines show why their value was rejected.

Supports UDP, serial, WebSocket and replayed connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogHex, "hex", false, "Also print each payload as a hex dump")
	rawLogCmd.Flags().StringVar(&recordFile, "record", "", "Record every received payload to a capture file")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	recv, err := OpenReceiver()
	if err != nil {
		return err
	}

	rec, err := openRecorder(recordFile)
	if err != nil {
		recv.Close()
		return err
	}
	defer rec.Close()

	rm := newReceiverManager(recv)
	defer rm.stop()

	fmt.Printf("Heliograph - Raw Payload Log\n")
	fmt.Printf("Connection: %s\n", rm.ConnInfo())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	rm.onPayload = func(source, payload string) {
		rec.record(source, payload)
		fmt.Print(telemetry.FormatPayload(time.Now(), source, payload))
		if rawLogHex {
			fmt.Print(telemetry.FormatHex([]byte(payload)))
		}
	}
	rm.onLost = func(err error) {
		fmt.Printf("[CONNECTION] lost: %v\n", err)
	}
	rm.onReconnect = func(connInfo string) {
		fmt.Printf("[CONNECTION] reconnected: %s\n", connInfo)
	}

	err = rm.run()
	if errors.Is(err, ErrReplayFinished) || errors.Is(err, ErrConnectionClosed) {
		Log.WithError(err).Info("receiver stopped")
		return nil
	}
	return err
}
