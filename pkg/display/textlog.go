// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"strings"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
)

// LogBuffer is an append-only list of text lines backing the logs and
// info views. LogBuffer is not safe for concurrent use.
type LogBuffer struct {
	lines    []string
	maxLines int // 0 = unbounded
}

var _ telemetry.LogSink = (*LogBuffer)(nil)

// NewLogBuffer creates a buffer holding at most maxLines lines, dropping the
// oldest ones first. Zero means unbounded.
func NewLogBuffer(maxLines int) *LogBuffer {
	if maxLines < 0 {
		maxLines = 0
	}
	return &LogBuffer{maxLines: maxLines}
}

// AddLog appends one line
func (b *LogBuffer) AddLog(line string) {
	b.lines = append(b.lines, line)
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		excess := len(b.lines) - b.maxLines
		b.lines = append([]string(nil), b.lines[excess:]...)
	}
}

// ClearLogs removes every line
func (b *LogBuffer) ClearLogs() {
	b.lines = nil
}

// Len returns the number of stored lines
func (b *LogBuffer) Len() int {
	return len(b.lines)
}

// MaxLines returns the line cap, 0 when unbounded
func (b *LogBuffer) MaxLines() int {
	return b.maxLines
}

// Lines returns a copy of the stored lines
func (b *LogBuffer) Lines() []string {
	return append([]string(nil), b.lines...)
}

// Text returns the stored text: every line prefixed with a newline
func (b *LogBuffer) Text() string {
	var sb strings.Builder
	for _, l := range b.lines {
		sb.WriteString("\n")
		sb.WriteString(l)
	}
	return sb.String()
}
