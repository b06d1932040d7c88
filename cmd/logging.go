// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Log = logrus.WithField("module", "CMD")

// logOutput is the file opened for --log-file, nil when logging to stderr
var logOutput *os.File

// setupLogging applies --log-level and --log-file before any command runs
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		logOutput = f
		logrus.SetOutput(f)
		return nil
	}

	logrus.SetOutput(os.Stderr)
	return nil
}

// quietLogging silences stderr logging while a TUI owns the terminal.
// Logging to a file is left alone.
func quietLogging() {
	if logOutput == nil {
		logrus.SetOutput(io.Discard)
	}
}
