// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"strconv"
	"strings"
)

// DataLine builds "<name>::<value>"
func DataLine(name string, value int64) string {
	return name + DataMarker + strconv.FormatInt(value, 10)
}

// ClearLogsLine builds the clear logs command
func ClearLogsLine() string {
	return CommandMarker + CommandClearLogs
}

// ClearPlotsLine builds the clear plots command
func ClearPlotsLine() string {
	return CommandMarker + CommandClearPlots
}

// RemovePlotLine builds the remove plot command for one series
func RemovePlotLine(name string) string {
	return CommandMarker + CommandRemovePlot + name
}

// JoinLines joins lines into a single payload
func JoinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

// ParseAssignment parses "name=value" as used on the command line and
// returns the equivalent data line
func ParseAssignment(s string) (string, error) {
	name, text, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", fmt.Errorf("expected name=value, got %q", s)
	}
	if strings.Contains(name, DataMarker) || strings.Contains(name, CommandMarker) {
		return "", fmt.Errorf("series name %q contains a protocol marker", name)
	}
	value, err := ParseInt(text)
	if err != nil {
		return "", fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return DataLine(name, value), nil
}
