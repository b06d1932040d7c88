// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"reflect"
	"testing"
)

// recordingSink implements PlotSink and LogSink and records every call
type recordingSink struct {
	calls   []string
	updates int
}

func (s *recordingSink) AddData(name string, value int64) {
	s.calls = append(s.calls, fmt.Sprintf("data %s=%d", name, value))
}

func (s *recordingSink) RemovePlot(name string) {
	s.calls = append(s.calls, "remove "+name)
}

func (s *recordingSink) ClearPlots() {
	s.calls = append(s.calls, "clear plots")
}

func (s *recordingSink) Update() {
	s.updates++
}

func (s *recordingSink) AddLog(line string) {
	s.calls = append(s.calls, "log "+line)
}

func (s *recordingSink) ClearLogs() {
	s.calls = append(s.calls, "clear logs")
}

func newRecordingRouter() (*Router, *recordingSink) {
	sink := &recordingSink{}
	return NewRouter(sink, sink), sink
}

// ============================================================
// Dispatch Tests
// ============================================================

func TestDispatch_MixedPayload(t *testing.T) {
	r, sink := newRecordingRouter()

	res := r.Dispatch("cpu::42\nRAM::17\nhello world\ntemp::abc\n+++CP\n")

	expected := []string{
		"data cpu=42",
		"data RAM=17",
		"log hello world",
		"log temp::abc",
		"clear plots",
	}
	if !reflect.DeepEqual(sink.calls, expected) {
		t.Errorf("calls = %q, expected %q", sink.calls, expected)
	}
	if !res.PlotsChanged || !res.LogsChanged {
		t.Errorf("expected both views changed, got %+v", res)
	}
	if sink.updates != 1 {
		t.Errorf("expected exactly one Update, got %d", sink.updates)
	}
}

func TestDispatch_Empty(t *testing.T) {
	r, sink := newRecordingRouter()
	res := r.Dispatch("")
	if res.Changed() {
		t.Errorf("empty payload should change nothing")
	}
	if len(sink.calls) != 0 || sink.updates != 0 {
		t.Errorf("empty payload should not touch sinks: %q updates=%d", sink.calls, sink.updates)
	}
}

func TestDispatch_LogsOnlySkipsUpdate(t *testing.T) {
	r, sink := newRecordingRouter()
	res := r.Dispatch("boot ok\n+++CL\n")
	if res.PlotsChanged {
		t.Errorf("logs-only payload should not change plots")
	}
	if !res.LogsChanged {
		t.Errorf("expected logs changed")
	}
	if sink.updates != 0 {
		t.Errorf("Update should not run without plot changes, got %d", sink.updates)
	}
}

func TestDispatch_UnknownCommandIgnored(t *testing.T) {
	r, sink := newRecordingRouter()
	res := r.Dispatch("+++XYZ")
	if res.Changed() {
		t.Errorf("unknown command should change nothing, got %+v", res)
	}
	if len(sink.calls) != 0 {
		t.Errorf("unknown command should not reach sinks: %q", sink.calls)
	}
}

func TestDispatch_EmptyLinesAreLogged(t *testing.T) {
	r, sink := newRecordingRouter()
	r.Dispatch("a\n\nb")
	expected := []string{"log a", "log ", "log b"}
	if !reflect.DeepEqual(sink.calls, expected) {
		t.Errorf("calls = %q, expected %q", sink.calls, expected)
	}
}

func TestDispatch_RemovePlot(t *testing.T) {
	r, sink := newRecordingRouter()
	r.Dispatch("+++RP:cpu\n+++RP:")
	expected := []string{"remove cpu", "remove "}
	if !reflect.DeepEqual(sink.calls, expected) {
		t.Errorf("calls = %q, expected %q", sink.calls, expected)
	}
	if sink.updates != 1 {
		t.Errorf("expected one Update, got %d", sink.updates)
	}
}

func TestDispatch_OrderPreserved(t *testing.T) {
	r, sink := newRecordingRouter()
	r.Dispatch("x::1\n+++CP\nx::2")
	expected := []string{"data x=1", "clear plots", "data x=2"}
	if !reflect.DeepEqual(sink.calls, expected) {
		t.Errorf("calls = %q, expected %q", sink.calls, expected)
	}
}

func TestDispatch_Statistics(t *testing.T) {
	r, _ := newRecordingRouter()
	stats := NewStatistics()
	r.SetStatistics(stats)

	r.Dispatch("cpu::42\nRAM::17\nhello world\ntemp::abc\n+++CP\n")
	r.Dispatch("")

	if stats.TotalPayloads != 2 {
		t.Errorf("TotalPayloads = %d, expected 2", stats.TotalPayloads)
	}
	if stats.EmptyPayloads != 1 {
		t.Errorf("EmptyPayloads = %d, expected 1", stats.EmptyPayloads)
	}
	if stats.TotalLines != 5 {
		t.Errorf("TotalLines = %d, expected 5", stats.TotalLines)
	}
	if stats.DataPoints != 2 || stats.LogLines != 2 || stats.Commands != 1 {
		t.Errorf("unexpected counts: data=%d log=%d cmd=%d",
			stats.DataPoints, stats.LogLines, stats.Commands)
	}
	if stats.Fallbacks != 1 || stats.Inconvertibles != 1 {
		t.Errorf("expected one inconvertible fallback, got %d/%d",
			stats.Fallbacks, stats.Inconvertibles)
	}
}

// ============================================================
// FallbackReason Tests
// ============================================================

func TestFallbackReason(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "empty"},
		{ErrOverflow, "overflow"},
		{ErrUnderflow, "underflow"},
		{ErrInconvertible, "inconvertible"},
		{fmt.Errorf("wrapped: %w", ErrOverflow), "overflow"},
	}

	for _, tt := range tests {
		if got := FallbackReason(tt.err); got != tt.expected {
			t.Errorf("FallbackReason(%v) = %q, expected %q", tt.err, got, tt.expected)
		}
	}
}
