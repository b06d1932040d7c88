// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"math/rand"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
)

// LegendEntry maps a series name to its color
type LegendEntry struct {
	Name  string
	Color Color
}

// Chart is the series collection behind the plots view. It owns the shared
// Y axis range. Chart is not safe for concurrent use; Display serializes
// access to it.
type Chart struct {
	series    map[string]*Series
	order     []string // creation order, for the legend
	maxPoints int
	rng       *rand.Rand

	min, max int64
	hasRange bool
	stale    bool
}

var _ telemetry.PlotSink = (*Chart)(nil)

// NewChart creates an empty chart whose series hold maxPoints samples.
// rng picks series colors.
func NewChart(maxPoints int, rng *rand.Rand) *Chart {
	if maxPoints < 1 {
		maxPoints = 1
	}
	return &Chart{
		series:    make(map[string]*Series),
		maxPoints: maxPoints,
		rng:       rng,
	}
}

// AddData appends value to the named series, creating it if needed
func (c *Chart) AddData(name string, value int64) {
	s, ok := c.series[name]
	if !ok {
		s = NewSeries(name, c.randomColor(), c.maxPoints)
		c.series[name] = s
		c.order = append(c.order, name)
		Log.WithField("series", name).Debug("created series")
	}
	s.Push(value)
	c.stale = true
}

// RemovePlot removes a series and its legend entry; unknown names are ignored
func (c *Chart) RemovePlot(name string) {
	if _, ok := c.series[name]; !ok {
		return
	}
	delete(c.series, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.stale = true
}

// ClearPlots removes every series and makes the range undefined
func (c *Chart) ClearPlots() {
	c.series = make(map[string]*Series)
	c.order = nil
	c.min, c.max = 0, 0
	c.hasRange = false
	c.stale = true
}

// Update recomputes the Y range from every valid sample. With no valid
// samples the range is left as it was.
func (c *Chart) Update() {
	c.stale = false

	found := false
	var lo, hi int64
	for _, s := range c.series {
		for _, sample := range s.samples {
			if !sample.Valid {
				continue
			}
			if !found {
				lo, hi = sample.Value, sample.Value
				found = true
				continue
			}
			if sample.Value < lo {
				lo = sample.Value
			}
			if sample.Value > hi {
				hi = sample.Value
			}
		}
	}
	if !found {
		return
	}
	c.min, c.max = lo, hi
	c.hasRange = true
}

// SetMaxPointCount changes the capacity of every current and future series.
// Values below one are clamped to one.
func (c *Chart) SetMaxPointCount(n int) {
	if n < 1 {
		n = 1
	}
	c.maxPoints = n
	for _, s := range c.series {
		s.Resize(n)
	}
	c.stale = true
}

// MaxPointCount returns the series capacity
func (c *Chart) MaxPointCount() int {
	return c.maxPoints
}

// Range returns the Y range computed by the last Update. ok is false while
// the range is undefined.
func (c *Chart) Range() (min, max int64, ok bool) {
	return c.min, c.max, c.hasRange
}

// Stale reports whether the chart changed since the last Update
func (c *Chart) Stale() bool {
	return c.stale
}

// Len returns the number of series
func (c *Chart) Len() int {
	return len(c.series)
}

// Names returns series names in creation order
func (c *Chart) Names() []string {
	return append([]string(nil), c.order...)
}

// Series returns the named series or nil
func (c *Chart) Series(name string) *Series {
	return c.series[name]
}

// Legend returns one entry per series in creation order
func (c *Chart) Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(c.order))
	for _, name := range c.order {
		entries = append(entries, LegendEntry{Name: name, Color: c.series[name].color})
	}
	return entries
}

// randomColor picks a pseudo random color; colors may repeat
func (c *Chart) randomColor() Color {
	return Color{
		R: uint8(c.rng.Intn(256)),
		G: uint8(c.rng.Intn(256)),
		B: uint8(c.rng.Intn(256)),
	}
}
