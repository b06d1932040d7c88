// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import "fmt"

// Sample is one chart point. Invalid samples are "no data" markers and are
// skipped when drawing and when computing the axis range.
type Sample struct {
	Value int64
	Valid bool
}

// Color is an RGB series color
type Color struct {
	R, G, B uint8
}

// Hex returns the color as "#RRGGBB"
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Series is a named fixed capacity ring of samples. The ring always holds
// exactly capacity samples, starting out as no-data markers, so pushing a
// value shifts the oldest one out.
type Series struct {
	name    string
	color   Color
	samples []Sample
	head    int // index of the oldest sample
}

// NewSeries creates a series with capacity samples (at least one)
func NewSeries(name string, color Color, capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		name:    name,
		color:   color,
		samples: make([]Sample, capacity),
	}
}

// Name returns the series name
func (s *Series) Name() string {
	return s.name
}

// Color returns the color assigned at creation
func (s *Series) Color() Color {
	return s.color
}

// Cap returns the ring capacity
func (s *Series) Cap() int {
	return len(s.samples)
}

// Push appends a value, evicting the oldest sample
func (s *Series) Push(value int64) {
	s.samples[s.head] = Sample{Value: value, Valid: true}
	s.head = (s.head + 1) % len(s.samples)
}

// Samples returns every slot from oldest to newest, including no-data
// markers
func (s *Series) Samples() []Sample {
	out := make([]Sample, 0, len(s.samples))
	out = append(out, s.samples[s.head:]...)
	out = append(out, s.samples[:s.head]...)
	return out
}

// Values returns the valid samples from oldest to newest
func (s *Series) Values() []int64 {
	var out []int64
	for _, sample := range s.Samples() {
		if sample.Valid {
			out = append(out, sample.Value)
		}
	}
	return out
}

// Resize changes the capacity, keeping the newest samples
func (s *Series) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if capacity == len(s.samples) {
		return
	}

	old := s.Samples()
	samples := make([]Sample, capacity)
	if len(old) > capacity {
		old = old[len(old)-capacity:]
	}
	// keep newest samples at the end, no-data markers in front
	copy(samples[capacity-len(old):], old)
	s.samples = samples
	s.head = 0
}
