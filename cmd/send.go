// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	sendMessages    []string
	sendFile        string
	sendIP          string
	sendPort        int
	sendClearLogs   bool
	sendClearPlots  bool
	sendRemovePlots []string
	sendData        []string
)

var errEmptyPayload = errors.New("nothing to send: use --message, --file or a command flag")

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a payload to a display",
	Long: `Send one UDP datagram to a display.

The payload is built from, in order:
  --clear-logs         +++CL
  --clear-plots        +++CP
  --remove-plot NAME   +++RP:NAME     (repeatable)
  --data NAME=VALUE    NAME::VALUE    (repeatable, VALUE must be an integer)
  --message TEXT       TEXT           (repeatable)
  --file PATH          file contents  (instead of --message)

Lines are joined with newlines. The display reads at most 1024 bytes per
datagram.

Examples:
  heliograph send --ip 192.168.1.50 --data cpu=42 --data ram=17
  heliograph send --ip 192.168.1.50 --message "hello world"
  heliograph send --ip 192.168.1.50 --clear-plots`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringArrayVar(&sendMessages, "message", nil, "Message line to send (repeatable)")
	sendCmd.Flags().StringVar(&sendFile, "file", "", "Send the contents of this file")
	sendCmd.Flags().StringVar(&sendIP, "ip", "127.0.0.1", "IP address of the display")
	sendCmd.Flags().IntVar(&sendPort, "port", telemetry.DefaultPort, "UDP port of the display")
	sendCmd.Flags().BoolVar(&sendClearLogs, "clear-logs", false, "Clear the log view")
	sendCmd.Flags().BoolVar(&sendClearPlots, "clear-plots", false, "Clear every plot")
	sendCmd.Flags().StringArrayVar(&sendRemovePlots, "remove-plot", nil, "Remove one plot (repeatable)")
	sendCmd.Flags().StringArrayVar(&sendData, "data", nil, "Data point as name=value (repeatable)")
	sendCmd.MarkFlagsMutuallyExclusive("message", "file")
}

// sendOptions is everything a send payload is built from
type sendOptions struct {
	ClearLogs   bool
	ClearPlots  bool
	RemovePlots []string
	Data        []string
	Messages    []string
	File        string
}

// buildSendPayload joins the requested lines into one payload
func buildSendPayload(opts sendOptions) (string, error) {
	var lines []string
	if opts.ClearLogs {
		lines = append(lines, telemetry.ClearLogsLine())
	}
	if opts.ClearPlots {
		lines = append(lines, telemetry.ClearPlotsLine())
	}
	for _, name := range opts.RemovePlots {
		lines = append(lines, telemetry.RemovePlotLine(name))
	}
	for _, assignment := range opts.Data {
		line, err := telemetry.ParseAssignment(assignment)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	lines = append(lines, opts.Messages...)

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
		lines = append(lines, string(data))
	}

	payload := telemetry.JoinLines(lines...)
	if payload == "" {
		return "", errEmptyPayload
	}
	return payload, nil
}

// sendPayload writes payload as one datagram to addr
func sendPayload(addr, payload string) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(payload)); err != nil {
		return fmt.Errorf("failed to send to %s: %w", addr, err)
	}
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	payload, err := buildSendPayload(sendOptions{
		ClearLogs:   sendClearLogs,
		ClearPlots:  sendClearPlots,
		RemovePlots: sendRemovePlots,
		Data:        sendData,
		Messages:    sendMessages,
		File:        sendFile,
	})
	if err != nil {
		return err
	}

	if len(payload) > telemetry.ReceiveBufferSize {
		Log.WithField("bytes", len(payload)).Warn("payload is larger than the display receive buffer and will be truncated")
	}

	addr := net.JoinHostPort(sendIP, strconv.Itoa(sendPort))
	if err := sendPayload(addr, payload); err != nil {
		return err
	}

	fmt.Printf("Sent to address: %s\n", addr)
	return nil
}
