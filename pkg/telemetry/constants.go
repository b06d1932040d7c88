// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

// Line markers
const (
	DataMarker    = "::"  // <series>::<integer>
	CommandMarker = "+++" // <anything>+++<command>
)

// Command tokens (text following CommandMarker)
const (
	CommandClearLogs  = "CL"
	CommandClearPlots = "CP"
	CommandRemovePlot = "RP:" // prefix, followed by the series name
)

// Transport defaults
const (
	DefaultPort       = 5555
	ReceiveBufferSize = 1024 // one datagram
)

// Display defaults
const (
	DefaultMaxPointCount = 30
)

// LineKind is the classification of a single protocol line
type LineKind uint8

const (
	KindLog LineKind = iota
	KindData
	KindCommand
)

// CommandKind identifies a recognized command token
type CommandKind uint8

const (
	CmdUnknown CommandKind = iota
	CmdClearLogs
	CmdClearPlots
	CmdRemovePlot
)

func (k LineKind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindData:
		return "data"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

func (c CommandKind) String() string {
	switch c {
	case CmdClearLogs:
		return "CLEAR_LOGS"
	case CmdClearPlots:
		return "CLEAR_PLOTS"
	case CmdRemovePlot:
		return "REMOVE_PLOT"
	default:
		return "UNKNOWN"
	}
}
