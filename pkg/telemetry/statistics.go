// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks line counts and fallback rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPayloads   uint64
	EmptyPayloads   uint64
	TotalLines      uint64
	DataPoints      uint64
	LogLines        uint64
	Commands        uint64
	ClearLogs       uint64
	ClearPlots      uint64
	RemovePlots     uint64
	UnknownCommands uint64
	Fallbacks       uint64
	EmptyValues     uint64
	Overflows       uint64
	Underflows      uint64
	Inconvertibles  uint64

	// Rates (calculated)
	PayloadRate float64 // payloads/sec
	LineRate    float64 // lines/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update counts one payload and its classified lines
func (s *Statistics) Update(lines []Line) {
	s.TotalPayloads++
	if len(lines) == 0 {
		s.EmptyPayloads++
	}

	for _, l := range lines {
		s.TotalLines++
		switch l.Kind {
		case KindData:
			s.DataPoints++
		case KindCommand:
			s.Commands++
			switch l.Command {
			case CmdClearLogs:
				s.ClearLogs++
			case CmdClearPlots:
				s.ClearPlots++
			case CmdRemovePlot:
				s.RemovePlots++
			default:
				s.UnknownCommands++
			}
		default:
			s.LogLines++
			if l.Fallback {
				s.Fallbacks++
				switch {
				case l.FallbackErr == nil:
					s.EmptyValues++
				case errors.Is(l.FallbackErr, ErrOverflow):
					s.Overflows++
				case errors.Is(l.FallbackErr, ErrUnderflow):
					s.Underflows++
				default:
					s.Inconvertibles++
				}
			}
		}
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates payload and line rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PayloadRate = float64(s.TotalPayloads) / elapsed
		s.LineRate = float64(s.TotalLines) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var dataPercent, logPercent, commandPercent, fallbackPercent float64
	if s.TotalLines > 0 {
		dataPercent = float64(s.DataPoints) * 100.0 / float64(s.TotalLines)
		logPercent = float64(s.LogLines) * 100.0 / float64(s.TotalLines)
		commandPercent = float64(s.Commands) * 100.0 / float64(s.TotalLines)
		fallbackPercent = float64(s.Fallbacks) * 100.0 / float64(s.TotalLines)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Payloads:        %8d\n", s.TotalPayloads)
	result += fmt.Sprintf("Lines:           %8d\n", s.TotalLines)
	result += fmt.Sprintf("Data Points:     %8d (%.1f%%)\n", s.DataPoints, dataPercent)
	result += fmt.Sprintf("Log Lines:       %8d (%.1f%%)\n", s.LogLines, logPercent)
	result += fmt.Sprintf("Commands:        %8d (%.1f%%)\n", s.Commands, commandPercent)

	if s.Commands > 0 {
		result += fmt.Sprintf("  Clear Logs:       %5d\n", s.ClearLogs)
		result += fmt.Sprintf("  Clear Plots:      %5d\n", s.ClearPlots)
		result += fmt.Sprintf("  Remove Plot:      %5d\n", s.RemovePlots)
		if s.UnknownCommands > 0 {
			result += fmt.Sprintf("  Unknown:          %5d\n", s.UnknownCommands)
		}
	}
	if s.Fallbacks > 0 {
		result += fmt.Sprintf("Fallback Lines:  %8d (%.1f%%)\n", s.Fallbacks, fallbackPercent)
		if s.EmptyValues > 0 {
			result += fmt.Sprintf("  Empty Value:      %5d\n", s.EmptyValues)
		}
		if s.Overflows > 0 {
			result += fmt.Sprintf("  Overflow:         %5d\n", s.Overflows)
		}
		if s.Underflows > 0 {
			result += fmt.Sprintf("  Underflow:        %5d\n", s.Underflows)
		}
		if s.Inconvertibles > 0 {
			result += fmt.Sprintf("  Inconvertible:    %5d\n", s.Inconvertibles)
		}
	}
	if s.EmptyPayloads > 0 {
		result += fmt.Sprintf("Empty Payloads:  %8d\n", s.EmptyPayloads)
	}

	result += fmt.Sprintf("Payload Rate:    %8.1f payloads/sec\n", s.PayloadRate)
	result += fmt.Sprintf("Line Rate:       %8.1f lines/sec\n", s.LineRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
