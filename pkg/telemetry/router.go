// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var Log = logrus.WithField("module", "TELEMETRY")

// PlotSink receives data point and plot commands
type PlotSink interface {
	AddData(name string, value int64)
	RemovePlot(name string)
	ClearPlots()
	// Update recomputes derived state (axis range) after a batch of changes
	Update()
}

// LogSink receives free text lines and log commands
type LogSink interface {
	AddLog(line string)
	ClearLogs()
}

// Result reports which views a dispatch touched
type Result struct {
	PlotsChanged bool
	LogsChanged  bool
}

// Changed reports whether any view needs a repaint
func (r Result) Changed() bool {
	return r.PlotsChanged || r.LogsChanged
}

// Router turns payloads into effects on a PlotSink and a LogSink
type Router struct {
	plots PlotSink
	logs  LogSink
	stats *Statistics
}

// NewRouter creates a router dispatching to the given sinks
func NewRouter(plots PlotSink, logs LogSink) *Router {
	return &Router{plots: plots, logs: logs}
}

// SetStatistics attaches a statistics tracker (nil disables tracking)
func (r *Router) SetStatistics(stats *Statistics) {
	r.stats = stats
}

// Dispatch parses every line of blob and applies it in order. The plot
// sink's Update runs once at the end if any line changed a plot.
func (r *Router) Dispatch(blob string) Result {
	var res Result
	if blob == "" {
		if r.stats != nil {
			r.stats.Update(nil)
		}
		return res
	}

	lines := ParsePayload(blob)
	for _, l := range lines {
		lr := r.Apply(l)
		res.PlotsChanged = res.PlotsChanged || lr.PlotsChanged
		res.LogsChanged = res.LogsChanged || lr.LogsChanged
	}

	if r.stats != nil {
		r.stats.Update(lines)
	}

	if res.PlotsChanged {
		r.plots.Update()
	}
	return res
}

// Apply performs the effect of a single classified line without running
// the plot sink's Update.
func (r *Router) Apply(l Line) Result {
	observeLine(l)

	switch l.Kind {
	case KindCommand:
		switch l.Command {
		case CmdClearLogs:
			r.logs.ClearLogs()
			return Result{LogsChanged: true}
		case CmdClearPlots:
			r.plots.ClearPlots()
			return Result{PlotsChanged: true}
		case CmdRemovePlot:
			r.plots.RemovePlot(l.Target)
			return Result{PlotsChanged: true}
		default:
			Log.WithField("command", l.Token).Debug("ignoring unknown command")
			return Result{}
		}

	case KindData:
		r.plots.AddData(l.Series, l.Value)
		return Result{PlotsChanged: true}

	default:
		if l.Fallback {
			Log.WithFields(logrus.Fields{
				"line":   l.Raw,
				"reason": FallbackReason(l.FallbackErr),
			}).Warn("has '::' but could not convert to number, adding log")
		}
		r.logs.AddLog(l.Raw)
		return Result{LogsChanged: true}
	}
}

// FallbackReason names why a data line became a log line
func FallbackReason(err error) string {
	switch {
	case err == nil:
		return "empty"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrUnderflow):
		return "underflow"
	default:
		return "inconvertible"
	}
}
