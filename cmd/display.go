// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/heliograph/pkg/display"
	"github.com/Thermoquad/heliograph/pkg/telemetry"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	maxPointCount int
	maxQueued     int
	logMaxLines   int
	recordFile    string
	noTUI         bool
)

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show streamed plots and logs",
	Long: `Receive telemetry lines and show them on three tabs: Plots, Logs and Info.

Data lines ("name::value") are plotted as scrolling line charts, one series
per name. Other lines are appended to the log. Command lines clear the logs
(+++CL), clear every plot (+++CP) or remove one plot (+++RP:name).

Keys:
  tab      switch tab
  c        clear the current tab
  C        clear every plot
  + / -    keep more / fewer points per series
  :        open the console; the typed line is handled like a received payload
  ?        toggle help
  q        quit

When stdout is not a terminal (or with --no-tui) changes are printed as text.
Stream transports (serial, WebSocket) reconnect automatically.`,
	RunE: runDisplay,
}

func init() {
	rootCmd.AddCommand(displayCmd)
	displayCmd.Flags().IntVar(&maxPointCount, "max-points", telemetry.DefaultMaxPointCount, "Samples kept per series")
	displayCmd.Flags().IntVar(&maxQueued, "max-queued", display.DefaultMaxQueued, "Ingestion queue bound, oldest payloads are dropped (0 = unbounded)")
	displayCmd.Flags().IntVar(&logMaxLines, "log-lines", 0, "Log view line cap (0 = unbounded)")
	displayCmd.Flags().StringVar(&recordFile, "record", "", "Record every received payload to a capture file")
	displayCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Print changes as text instead of running the terminal UI")

	// running the binary without a subcommand opens the display
	rootCmd.RunE = runDisplay
	rootCmd.Flags().AddFlagSet(displayCmd.Flags())
}

// payloadRecorder writes received payloads to a capture file
type payloadRecorder struct {
	file   *os.File
	writer *telemetry.CaptureWriter
}

func openRecorder(path string) (*payloadRecorder, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture %s: %w", path, err)
	}
	return &payloadRecorder{file: f, writer: telemetry.NewCaptureWriter(f)}, nil
}

func (r *payloadRecorder) record(source, payload string) {
	if r == nil {
		return
	}
	if err := r.writer.Write(source, payload); err != nil {
		Log.WithError(err).Error("failed to record payload")
	}
}

func (r *payloadRecorder) Close() error {
	if r == nil {
		return nil
	}
	if err := r.writer.Flush(); err != nil {
		r.file.Close()
		return err
	}
	Log.WithField("records", r.writer.Count()).Info("capture written")
	return r.file.Close()
}

func newDisplayConfig() display.Config {
	cfg := display.DefaultConfig()
	cfg.MaxPointCount = maxPointCount
	cfg.MaxQueued = maxQueued
	cfg.LogMaxLines = logMaxLines
	return cfg
}

// addConnectionInfo fills the info tab, the equivalent of the network
// details the device shows on boot
func addConnectionInfo(d *display.Display, connInfo string) {
	d.AddInfo("Heliograph debug display")
	d.AddInfo("Connection: " + connInfo)
	d.AddInfo(fmt.Sprintf("Max points per series: %d", d.ChartMaxPointCount()))
	if maxQueued > 0 {
		d.AddInfo(fmt.Sprintf("Queue bound: %d payloads", maxQueued))
	} else {
		d.AddInfo("Queue bound: none")
	}
	if metricsAddr != "" {
		d.AddInfo("Metrics: http://" + metricsAddr + EndpointUrl)
	}
	if recordFile != "" {
		d.AddInfo("Recording to " + recordFile)
	}
	d.AddInfo("Started " + time.Now().Format(time.DateTime))
}

func runDisplay(cmd *cobra.Command, args []string) error {
	recv, err := OpenReceiver()
	if err != nil {
		return err
	}

	stopMetrics, err := maybeStartMetrics()
	if err != nil {
		recv.Close()
		return err
	}
	defer stopMetrics()

	rec, err := openRecorder(recordFile)
	if err != nil {
		recv.Close()
		return err
	}
	defer rec.Close()

	// both runners join the receiver before returning, so rec is idle by
	// the time its deferred Close runs
	rm := newReceiverManager(recv)
	if !noTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		return runDisplayTUI(rm, rec)
	}
	return runDisplayText(rm, rec)
}

// runDisplayTUI runs the display in the terminal UI
func runDisplayTUI(rm *receiverManager, rec *payloadRecorder) error {
	quietLogging()

	var p *tea.Program
	cfg := newDisplayConfig()
	cfg.OnUpdate = func() { p.Send(displayUpdateMsg{}) }
	d := display.New(cfg)
	d.SetStatistics(telemetry.NewStatistics())
	addConnectionInfo(d, rm.ConnInfo())

	m := initialDisplayModel(d, rm.ConnInfo())
	p = tea.NewProgram(m, tea.WithAltScreen())

	rm.onPayload = func(source, payload string) {
		rec.record(source, payload)
		d.PushData(payload)
	}
	rm.onLost = func(err error) {
		d.AddInfo(fmt.Sprintf("Connection lost: %v", err))
		p.Send(connectionLostMsg{err: err})
	}
	rm.onReconnect = func(connInfo string) {
		d.AddInfo("Reconnected: " + connInfo)
		p.Send(reconnectedMsg{connInfo: connInfo})
	}

	if err := d.Start(context.Background()); err != nil {
		return err
	}
	defer d.Close()

	rm.start(func(err error) {
		p.Send(receiverDoneMsg{err: err})
	})

	_, err := p.Run()
	rm.stop()
	rm.wait()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runDisplayText prints display changes as plain text
func runDisplayText(rm *receiverManager, rec *payloadRecorder) error {
	fmt.Printf("Heliograph - Debug Display\n")
	fmt.Printf("Connection: %s\n", rm.ConnInfo())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	updates := make(chan struct{}, 1)
	cfg := newDisplayConfig()
	cfg.OnUpdate = func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}
	d := display.New(cfg)
	d.SetStatistics(telemetry.NewStatistics())
	addConnectionInfo(d, rm.ConnInfo())

	rm.onPayload = func(source, payload string) {
		rec.record(source, payload)
		d.PushData(payload)
	}
	rm.onLost = func(err error) {
		fmt.Printf("[CONNECTION] lost: %v\n", err)
	}
	rm.onReconnect = func(connInfo string) {
		fmt.Printf("[CONNECTION] reconnected: %s\n", connInfo)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Close()

	recvDone := make(chan error, 1)
	rm.start(func(err error) {
		recvDone <- err
	})

	printer := &textPrinter{}
	for {
		select {
		case <-ctx.Done():
			rm.stop()
			rm.wait()
			printSummary(printer, d)
			return nil
		case err := <-recvDone:
			rm.wait()
			// let the render task drain what is left
			for d.HandleData() {
			}
			printSummary(printer, d)
			if errors.Is(err, ErrReplayFinished) {
				return nil
			}
			return err
		case <-updates:
			printer.print(d.Snapshot())
		}
	}
}

// printSummary prints the last changes and the statistics, both taken from
// one snapshot
func printSummary(printer *textPrinter, d *display.Display) {
	snap := d.Snapshot()
	printer.print(snap)
	if snap.Stats != nil {
		fmt.Print(snap.Stats.String())
	}
}

// textPrinter prints what changed between two snapshots
type textPrinter struct {
	logs   []string
	latest map[string]int64
}

func (tp *textPrinter) print(snap display.Snapshot) {
	// log lines since the last print; a shorter log means it was cleared
	start := len(tp.logs)
	if len(snap.Logs) < len(tp.logs) || !prefixEqual(tp.logs, snap.Logs) {
		fmt.Printf("[LOGS] cleared\n")
		start = 0
	}
	for _, l := range snap.Logs[start:] {
		fmt.Printf("LOG   %s\n", l)
	}
	tp.logs = snap.Logs

	latest := make(map[string]int64, len(snap.Series))
	var parts []string
	changed := len(snap.Series) != len(tp.latest)
	for _, s := range snap.Series {
		last, ok := lastValid(s.Samples)
		if !ok {
			continue
		}
		latest[s.Name] = last
		if prev, seen := tp.latest[s.Name]; !seen || prev != last {
			changed = true
		}
		parts = append(parts, fmt.Sprintf("%s=%d", s.Name, last))
	}
	if changed {
		if len(parts) == 0 {
			fmt.Printf("PLOTS (none)\n")
		} else {
			fmt.Printf("PLOTS %s", strings.Join(parts, " "))
			if snap.RangeValid {
				fmt.Printf("  [%d..%d]", snap.RangeMin, snap.RangeMax)
			}
			fmt.Println()
		}
	}
	tp.latest = latest
}

func prefixEqual(prefix, lines []string) bool {
	if len(prefix) > len(lines) {
		return false
	}
	for i := range prefix {
		if prefix[i] != lines[i] {
			return false
		}
	}
	return true
}

func lastValid(samples []display.Sample) (int64, bool) {
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].Valid {
			return samples[i].Value, true
		}
	}
	return 0, false
}
