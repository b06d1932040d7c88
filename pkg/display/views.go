// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Initializer is a view that lays itself out for a size
type Initializer interface {
	Init(width, height int)
}

// Refresher is a view that rebuilds its content from its model
type Refresher interface {
	Refresh()
}

// Renderer is a view that can be drawn
type Renderer interface {
	View() string
}

// View is a complete tab view
type View interface {
	Initializer
	Refresher
	Renderer
}

const (
	minChartWidth  = 16
	minChartHeight = 4
)

var (
	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Italic(true)
	legendNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// ChartView draws a Chart as a streaming line plot with a legend below it
type ChartView struct {
	chart    *Chart
	width    int
	height   int
	rendered string
}

var _ View = (*ChartView)(nil)

// NewChartView creates a view for chart
func NewChartView(chart *Chart) *ChartView {
	return &ChartView{chart: chart}
}

// Init sets the view size
func (v *ChartView) Init(width, height int) {
	v.width = width
	v.height = height
	v.Refresh()
}

// Refresh redraws the plot from the chart's current series and range
func (v *ChartView) Refresh() {
	names := v.chart.Names()
	if len(names) == 0 {
		v.rendered = placeholderStyle.Render("waiting for data (send name::value lines)")
		return
	}

	legend := v.renderLegend()
	plotHeight := v.height - lipgloss.Height(legend)
	if v.width < minChartWidth || plotHeight < minChartHeight {
		v.rendered = legend
		return
	}

	lc := streamlinechart.New(v.width, plotHeight)
	if lo, hi, ok := v.chart.Range(); ok {
		min, max := float64(lo), float64(hi)
		if min == max {
			min--
			max++
		}
		lc.SetYRange(min, max)
		lc.SetViewYRange(min, max)
	}
	for _, name := range names {
		s := v.chart.Series(name)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color().Hex()))
		lc.SetDataSetStyles(name, runes.ArcLineStyle, style)
		for _, value := range s.Values() {
			lc.PushDataSet(name, float64(value))
		}
	}
	lc.DrawAll()

	v.rendered = lipgloss.JoinVertical(lipgloss.Left, lc.View(), legend)
}

func (v *ChartView) renderLegend() string {
	entries := v.chart.Legend()
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color.Hex())).Render("━━")
		parts = append(parts, swatch+" "+legendNameStyle.Render(e.Name))
	}
	legend := strings.Join(parts, "   ")
	if v.width > 0 {
		legend = lipgloss.NewStyle().Width(v.width).Render(legend)
	}
	return legend
}

// View returns the last rendered plot
func (v *ChartView) View() string {
	return v.rendered
}

// TextView shows a LogBuffer in a scrolling viewport that follows the newest
// line
type TextView struct {
	buf      *LogBuffer
	viewport viewport.Model
	empty    string
}

var _ View = (*TextView)(nil)

// NewTextView creates a view for buf. empty is shown while buf has no lines.
func NewTextView(buf *LogBuffer, empty string) *TextView {
	return &TextView{
		buf:      buf,
		viewport: viewport.New(0, 0),
		empty:    empty,
	}
}

// Init sets the viewport size
func (v *TextView) Init(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height
	v.Refresh()
}

// Refresh reloads the buffer and scrolls to the bottom
func (v *TextView) Refresh() {
	v.viewport.SetContent(strings.Join(v.buf.Lines(), "\n"))
	v.viewport.GotoBottom()
}

// View renders the visible part of the buffer
func (v *TextView) View() string {
	if v.buf.Len() == 0 {
		return placeholderStyle.Render(v.empty)
	}
	return v.viewport.View()
}
