// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import "strings"

// Line is one classified protocol line
type Line struct {
	Raw  string
	Kind LineKind

	// KindCommand
	Command CommandKind
	Token   string // text after CommandMarker
	Target  string // series name for CmdRemovePlot

	// KindData
	Series string
	Value  int64

	// KindLog lines that carried a DataMarker but no usable value. Nil for
	// plain text and for an empty value.
	FallbackErr error
	Fallback    bool
}

// SplitLines splits a payload into newline separated lines. Trailing text
// without a newline is still a line; a final newline does not add an empty
// line after it.
func SplitLines(blob string) []string {
	if blob == "" {
		return nil
	}
	lines := strings.Split(blob, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ParseLine classifies a single line. Commands take precedence over data,
// data over free text. A data line whose value does not parse is returned
// as a log line holding the whole original text.
func ParseLine(raw string) Line {
	if pos := strings.Index(raw, CommandMarker); pos >= 0 {
		token := raw[pos+len(CommandMarker):]
		l := Line{Raw: raw, Kind: KindCommand, Token: token}
		switch {
		case token == CommandClearLogs:
			l.Command = CmdClearLogs
		case token == CommandClearPlots:
			l.Command = CmdClearPlots
		case strings.HasPrefix(token, CommandRemovePlot):
			l.Command = CmdRemovePlot
			l.Target = token[len(CommandRemovePlot):]
		default:
			l.Command = CmdUnknown
		}
		return l
	}

	if pos := strings.Index(raw, DataMarker); pos >= 0 {
		name := raw[:pos]
		text := raw[pos+len(DataMarker):]
		if text == "" {
			return Line{Raw: raw, Kind: KindLog, Fallback: true}
		}
		value, err := ParseInt(text)
		if err != nil {
			return Line{Raw: raw, Kind: KindLog, Fallback: true, FallbackErr: err}
		}
		return Line{Raw: raw, Kind: KindData, Series: name, Value: value}
	}

	return Line{Raw: raw, Kind: KindLog}
}

// ParsePayload splits and classifies every line of a payload
func ParsePayload(blob string) []Line {
	raw := SplitLines(blob)
	lines := make([]Line, 0, len(raw))
	for _, r := range raw {
		lines = append(lines, ParseLine(r))
	}
	return lines
}
