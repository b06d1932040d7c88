// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestCapture_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewCaptureWriter(&buf)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(250 * time.Millisecond), base.Add(time.Second)}
	idx := 0
	w.now = func() time.Time {
		ts := times[idx]
		idx++
		return ts
	}

	payloads := []string{"cpu::1\n", "hello\n+++CL\n", ""}
	for _, p := range payloads {
		if err := w.Write("10.0.0.2:4000", p); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if w.Count() != 3 {
		t.Errorf("Count = %d, expected 3", w.Count())
	}

	r := NewCaptureReader(&buf)
	offsets := []time.Duration{0, 250 * time.Millisecond, time.Second}
	for i, p := range payloads {
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if rec.Payload != p {
			t.Errorf("record %d payload = %q, expected %q", i, rec.Payload, p)
		}
		if rec.Offset != offsets[i] {
			t.Errorf("record %d offset = %v, expected %v", i, rec.Offset, offsets[i])
		}
		if rec.Source != "10.0.0.2:4000" {
			t.Errorf("record %d source = %q", i, rec.Source)
		}
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end, got %v", err)
	}
}

func TestCapture_Corrupt(t *testing.T) {
	r := NewCaptureReader(bytes.NewReader([]byte{0xFF, 0x00, 0x13}))
	if _, err := r.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("expected decode error, got %v", err)
	}
}
