// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"strings"
	"time"
)

// FormatPayload formats a received payload and its lines into a
// human-readable block
func FormatPayload(ts time.Time, source string, blob string) string {
	lines := ParsePayload(blob)

	result := fmt.Sprintf("[%s] PAYLOAD from=%s len=%d lines=%d\n",
		ts.Format("15:04:05.000"), source, len(blob), len(lines))
	for _, l := range lines {
		result += "  " + FormatLine(l) + "\n"
	}
	return result
}

// FormatLine returns a single-line description of a classified line
func FormatLine(l Line) string {
	switch l.Kind {
	case KindData:
		return fmt.Sprintf("DATA     %s = %d", l.Series, l.Value)

	case KindCommand:
		switch l.Command {
		case CmdRemovePlot:
			return fmt.Sprintf("COMMAND  %s %q", l.Command, l.Target)
		case CmdUnknown:
			return fmt.Sprintf("COMMAND  %s %q (ignored)", l.Command, l.Token)
		default:
			return fmt.Sprintf("COMMAND  %s", l.Command)
		}

	default:
		if l.Fallback {
			return fmt.Sprintf("LOG      %q (data fallback: %s)", l.Raw, FallbackReason(l.FallbackErr))
		}
		return fmt.Sprintf("LOG      %q", l.Raw)
	}
}

// FormatHex renders raw payload bytes as a hex dump, 16 bytes per row
func FormatHex(data []byte) string {
	var b strings.Builder
	b.WriteString("  Payload: ")
	for i, c := range data {
		if i > 0 && i%16 == 0 {
			b.WriteString("\n           ")
		}
		fmt.Fprintf(&b, "%02X ", c)
	}
	b.WriteString("\n")
	return b.String()
}
