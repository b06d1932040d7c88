// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	probeTimeout int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the connection by waiting for a payload",
	Long: `Wait for a payload on the connection until timeout.

This command opens the configured receiver (UDP by default) and waits for
any non-empty payload, then prints how its lines would be handled.

Exit codes:
  0 - Payload received before timeout
  1 - Timeout reached without receiving a payload
  2 - Connection error

Useful for checking that a device is sending to this host.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a payload")
}

// probeResult is what the probe waited for
type probeResult struct {
	source  string
	payload string
}

// waitForPayload returns the first payload from recv, or an error on read
// failure or timeout
func waitForPayload(recv Receiver, timeout time.Duration) (*probeResult, error) {
	resultChan := make(chan probeResult, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			payload, err := recv.Receive()
			if err != nil {
				errChan <- err
				return
			}
			if payload == "" {
				continue
			}
			resultChan <- probeResult{source: recv.Source(), payload: payload}
			return
		}
	}()

	select {
	case res := <-resultChan:
		return &res, nil
	case err := <-errChan:
		return nil, err
	case <-time.After(timeout):
		return nil, nil
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	recv, err := OpenReceiver()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer recv.Close()

	fmt.Printf("Heliograph - Probe\n")
	fmt.Printf("Connection: %s\n", recv)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for a payload...\n\n")

	res, err := waitForPayload(recv, time.Duration(probeTimeout)*time.Second)
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case res == nil:
		fmt.Fprintf(os.Stderr, "TIMEOUT: No payload received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	lines := telemetry.ParsePayload(res.payload)
	fmt.Printf("SUCCESS: Received payload\n")
	fmt.Printf("  Source: %s\n", res.source)
	fmt.Printf("  Length: %d bytes\n", len(res.payload))
	fmt.Printf("  Lines: %d\n", len(lines))
	for _, l := range lines {
		fmt.Printf("    %s\n", telemetry.FormatLine(l))
	}
	os.Exit(0)
	return nil
}
