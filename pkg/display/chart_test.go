// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestChart(maxPoints int) *Chart {
	return NewChart(maxPoints, rand.New(rand.NewSource(42)))
}

func TestChart_AddDataCreatesSeries(t *testing.T) {
	c := newTestChart(30)
	c.AddData("cpu", 42)
	c.AddData("RAM", 17)
	c.AddData("cpu", 43)

	require.Equal(t, []string{"cpu", "RAM"}, c.Names())
	require.Equal(t, []int64{42, 43}, c.Series("cpu").Values())
	require.Equal(t, []int64{17}, c.Series("RAM").Values())
	require.True(t, c.Stale())
}

func TestChart_ColorStableForLifetime(t *testing.T) {
	c := newTestChart(30)
	c.AddData("cpu", 1)
	color := c.Series("cpu").Color()
	for i := 0; i < 10; i++ {
		c.AddData("cpu", int64(i))
	}
	require.Equal(t, color, c.Series("cpu").Color())
	require.Equal(t, []LegendEntry{{Name: "cpu", Color: color}}, c.Legend())
}

func TestChart_RemovePlot(t *testing.T) {
	c := newTestChart(30)
	c.AddData("a", 1)
	c.AddData("b", 2)
	c.AddData("c", 3)

	c.RemovePlot("b")
	require.Equal(t, []string{"a", "c"}, c.Names())
	require.Nil(t, c.Series("b"))
	require.Len(t, c.Legend(), 2)

	// absent names are ignored
	c.RemovePlot("missing")
	require.Equal(t, 2, c.Len())

	// a removed series comes back empty
	c.AddData("b", 9)
	require.Equal(t, []int64{9}, c.Series("b").Values())
	require.Equal(t, []string{"a", "c", "b"}, c.Names())
}

func TestChart_UpdateRange(t *testing.T) {
	c := newTestChart(30)
	_, _, ok := c.Range()
	require.False(t, ok)

	c.AddData("a", 5)
	c.AddData("b", -3)
	c.AddData("a", 12)
	c.Update()

	min, max, ok := c.Range()
	require.True(t, ok)
	require.Equal(t, int64(-3), min)
	require.Equal(t, int64(12), max)
	require.False(t, c.Stale())
}

func TestChart_UpdateRangeAfterEviction(t *testing.T) {
	c := newTestChart(2)
	c.AddData("a", 100)
	c.AddData("a", 1)
	c.AddData("a", 2)
	c.Update()

	min, max, ok := c.Range()
	require.True(t, ok)
	require.Equal(t, int64(1), min)
	require.Equal(t, int64(2), max)
}

func TestChart_ClearThenUpdateLeavesRangeUndefined(t *testing.T) {
	c := newTestChart(30)
	c.AddData("a", 5)
	c.Update()

	c.ClearPlots()
	c.Update()
	_, _, ok := c.Range()
	require.False(t, ok)
	require.Zero(t, c.Len())
	require.Empty(t, c.Legend())

	c.Update()
	_, _, ok = c.Range()
	require.False(t, ok)

	c.AddData("b", 7)
	c.Update()
	min, max, ok := c.Range()
	require.True(t, ok)
	require.Equal(t, int64(7), min)
	require.Equal(t, int64(7), max)
}

func TestChart_UpdateWithoutSamplesKeepsRange(t *testing.T) {
	c := newTestChart(30)
	c.AddData("a", 5)
	c.AddData("a", 8)
	c.Update()

	c.RemovePlot("a")
	c.Update()
	min, max, ok := c.Range()
	require.True(t, ok)
	require.Equal(t, int64(5), min)
	require.Equal(t, int64(8), max)
}

func TestChart_SetMaxPointCount(t *testing.T) {
	c := newTestChart(5)
	for v := int64(1); v <= 5; v++ {
		c.AddData("a", v)
	}

	c.SetMaxPointCount(3)
	require.Equal(t, 3, c.MaxPointCount())
	require.Equal(t, []int64{3, 4, 5}, c.Series("a").Values())

	c.AddData("b", 1)
	require.Equal(t, 3, c.Series("b").Cap())

	c.SetMaxPointCount(-4)
	require.Equal(t, 1, c.MaxPointCount())
	require.Equal(t, []int64{5}, c.Series("a").Values())
}
