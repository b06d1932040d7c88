// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Track line statistics and data fallbacks",
	Long: `Count received payloads and lines with periodic statistics summaries.

This command classifies every line and tracks:
  - Data points, log lines and commands (per command kind)
  - Unknown commands that the display ignores
  - Data lines whose value could not be converted and fell back to log
    lines (empty, overflow, underflow, inconvertible)
  - Payload and line rates

By default, only fallbacks and unknown commands are displayed. Use --show-all
to display every line too.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all lines (not just fallbacks)")
	statsCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
}

// printLineIssue prints a fallback or ignored command in highlighted format
func printLineIssue(l telemetry.Line) bool {
	switch {
	case l.Fallback:
		fmt.Printf("[FALLBACK] %q became a log line: %s\n", l.Raw, telemetry.FallbackReason(l.FallbackErr))
		return true
	case l.Kind == telemetry.KindCommand && l.Command == telemetry.CmdUnknown:
		fmt.Printf("[IGNORED]  unknown command %q in %q\n", l.Token, l.Raw)
		return true
	}
	return false
}

func runStats(cmd *cobra.Command, args []string) error {
	recv, err := OpenReceiver()
	if err != nil {
		return err
	}

	rm := newReceiverManager(recv)
	defer rm.stop()

	fmt.Printf("Heliograph - Line Statistics\n")
	fmt.Printf("Connection: %s\n", rm.ConnInfo())
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All lines\n")
	} else {
		fmt.Printf("Mode: Fallbacks only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := telemetry.NewStatistics()

	// Channel for non-blocking receives
	payloads := make(chan string, 10)
	recvDone := make(chan error, 1)
	rm.onPayload = func(source, payload string) {
		payloads <- payload
	}
	go func() {
		recvDone <- rm.run()
	}()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		select {
		case payload := <-payloads:
			lines := telemetry.ParsePayload(payload)
			stats.Update(lines)
			for _, l := range lines {
				if !printLineIssue(l) && showAll {
					fmt.Printf("  %s\n", telemetry.FormatLine(l))
				}
			}

		case <-statsTicker.C:
			fmt.Print(stats.String())
			fmt.Println()

		case <-sigs:
			fmt.Print(stats.String())
			return nil

		case err := <-recvDone:
			// drain payloads delivered before the receiver stopped
			for len(payloads) > 0 {
				stats.Update(telemetry.ParsePayload(<-payloads))
			}
			fmt.Print(stats.String())
			if errors.Is(err, ErrReplayFinished) || errors.Is(err, ErrConnectionClosed) {
				return nil
			}
			return err
		}
	}
}
