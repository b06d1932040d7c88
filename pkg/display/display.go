// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package display owns the state shown by the debug display: the plots
// chart, the log and info buffers, their views, the ingestion queue and
// the render task that drains it.
package display

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/sirupsen/logrus"
)

var Log = logrus.WithField("module", "DISPLAY")

// DefaultTickPeriod is the render task period
const DefaultTickPeriod = 16 * time.Millisecond

var (
	ErrAlreadyStarted = errors.New("render task already started")
	ErrClosed         = errors.New("display closed")
)

// Tab identifies one of the display tabs
type Tab int

const (
	TabPlots Tab = iota
	TabLogs
	TabInfo
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabPlots:
		return "Plots"
	case TabLogs:
		return "Logs"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tabs lists every tab in switch order
func Tabs() []Tab {
	return []Tab{TabPlots, TabLogs, TabInfo}
}

// Config holds display settings
type Config struct {
	MaxPointCount int           // samples per series
	MaxQueued     int           // ingestion queue bound, 0 = unbounded
	LogMaxLines   int           // log buffer cap, 0 = unbounded
	TickPeriod    time.Duration // render task period
	Width         int
	Height        int
	Seed          int64  // series color seed, 0 = time based
	OnUpdate      func() // called by the render task after a change, outside the lock
}

// DefaultConfig returns the standard display settings
func DefaultConfig() Config {
	return Config{
		MaxPointCount: telemetry.DefaultMaxPointCount,
		MaxQueued:     DefaultMaxQueued,
		TickPeriod:    DefaultTickPeriod,
		Width:         80,
		Height:        24,
	}
}

// Display is the owner of all display state. Every exported method is safe
// for concurrent use. Mutating methods take the display lock exactly once
// and work through unexported helpers that expect it held, so nothing ever
// acquires it twice. PushData only takes the queue lock.
type Display struct {
	mu     sync.Mutex
	chart  *Chart
	logs   *LogBuffer
	info   *LogBuffer
	views  map[Tab]View
	router *telemetry.Router
	stats  *telemetry.Statistics
	tab    Tab
	width  int
	height int

	queue *Queue
	wake  chan struct{}

	tick     time.Duration
	onUpdate func()

	lifeMu  sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a display. Zero config fields fall back to defaults, except
// MaxQueued and LogMaxLines where zero means unbounded.
func New(cfg Config) *Display {
	def := DefaultConfig()
	if cfg.MaxPointCount == 0 {
		cfg.MaxPointCount = def.MaxPointCount
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = def.TickPeriod
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	d := &Display{
		chart:    NewChart(cfg.MaxPointCount, rand.New(rand.NewSource(cfg.Seed))),
		logs:     NewLogBuffer(cfg.LogMaxLines),
		info:     NewLogBuffer(0),
		queue:    NewQueue(cfg.MaxQueued),
		wake:     make(chan struct{}, 1),
		tick:     cfg.TickPeriod,
		onUpdate: cfg.OnUpdate,
	}
	d.router = telemetry.NewRouter(d.chart, d.logs)
	d.views = map[Tab]View{
		TabPlots: NewChartView(d.chart),
		TabLogs:  NewTextView(d.logs, "no log lines yet"),
		TabInfo:  NewTextView(d.info, "no info"),
	}
	d.resize(cfg.Width, cfg.Height)
	return d
}

// SetStatistics attaches a line statistics tracker fed by HandleData. The
// display owns stats from then on; read it through Snapshot.
func (d *Display) SetStatistics(stats *telemetry.Statistics) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = stats
	d.router.SetStatistics(stats)
}

// PushData queues one payload for the render task. It never waits on
// rendering.
func (d *Display) PushData(payload string) {
	if d.queue.Push(payload) {
		PayloadsDropped.Inc()
		Log.WithField("dropped", d.queue.Dropped()).Warn("ingestion queue full, dropped oldest payload")
	}
	PayloadsQueued.Inc()
	QueueDepth.Set(float64(d.queue.Len()))

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// HandleData dispatches exactly one queued payload and reports whether any
// view changed. It returns false when the queue is empty.
func (d *Display) HandleData() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, ok := d.queue.Pop()
	if !ok {
		return false
	}
	QueueDepth.Set(float64(d.queue.Len()))
	PayloadsHandled.Inc()

	res := d.router.Dispatch(payload)
	if res.PlotsChanged {
		SeriesCount.Set(float64(d.chart.Len()))
		d.views[TabPlots].Refresh()
	}
	if res.LogsChanged {
		d.views[TabLogs].Refresh()
	}
	return res.Changed()
}

// ClearInfo empties the info view
func (d *Display) ClearInfo() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.info.ClearLogs()
	d.views[TabInfo].Refresh()
}

// AddInfo appends a line to the info view
func (d *Display) AddInfo(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.info.AddLog(line)
	d.views[TabInfo].Refresh()
}

// ClearLogs empties the log view
func (d *Display) ClearLogs() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logs.ClearLogs()
	d.views[TabLogs].Refresh()
}

// ClearPlots removes every series
func (d *Display) ClearPlots() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearPlots()
}

func (d *Display) clearPlots() {
	d.chart.ClearPlots()
	d.chart.Update()
	SeriesCount.Set(0)
	d.views[TabPlots].Refresh()
}

// ClearActive clears whatever the active tab shows
func (d *Display) ClearActive() {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.tab {
	case TabPlots:
		d.clearPlots()
	case TabLogs:
		d.logs.ClearLogs()
		d.views[TabLogs].Refresh()
	case TabInfo:
		d.info.ClearLogs()
		d.views[TabInfo].Refresh()
	}
}

// SwitchTab activates the next tab and returns it
func (d *Display) SwitchTab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = (d.tab + 1) % tabCount
	return d.tab
}

// SelectTab activates tab t; unknown tabs are ignored
func (d *Display) SelectTab(t Tab) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t >= 0 && t < tabCount {
		d.tab = t
	}
}

// ActiveTab returns the active tab
func (d *Display) ActiveTab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// SetChartMaxPointCount changes how many samples each series keeps. Values
// below one are clamped to one.
func (d *Display) SetChartMaxPointCount(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chart.SetMaxPointCount(n)
	d.chart.Update()
	d.views[TabPlots].Refresh()
}

// ChartMaxPointCount returns the samples kept per series
func (d *Display) ChartMaxPointCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chart.MaxPointCount()
}

// Resize lays the views out for a new content area
func (d *Display) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resize(width, height)
}

func (d *Display) resize(width, height int) {
	d.width = width
	d.height = height
	for _, t := range Tabs() {
		d.views[t].Init(width, height)
	}
}

// View renders the active tab's content
func (d *Display) View() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.views[d.tab].View()
}

// SeriesSnapshot is a copy of one series
type SeriesSnapshot struct {
	Name    string
	Color   Color
	Samples []Sample
}

// Snapshot is a consistent copy of the display state
type Snapshot struct {
	Tab           Tab
	Series        []SeriesSnapshot
	RangeMin      int64
	RangeMax      int64
	RangeValid    bool
	MaxPointCount int
	Logs          []string
	Info          []string
	Queued        int
	Dropped       uint64
	Stats         *telemetry.Statistics
}

// Snapshot copies the current state
func (d *Display) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{
		Tab:           d.tab,
		MaxPointCount: d.chart.MaxPointCount(),
		Logs:          d.logs.Lines(),
		Info:          d.info.Lines(),
		Queued:        d.queue.Len(),
		Dropped:       d.queue.Dropped(),
	}
	snap.RangeMin, snap.RangeMax, snap.RangeValid = d.chart.Range()
	for _, name := range d.chart.Names() {
		s := d.chart.Series(name)
		snap.Series = append(snap.Series, SeriesSnapshot{
			Name:    name,
			Color:   s.Color(),
			Samples: s.Samples(),
		})
	}
	if d.stats != nil {
		stats := *d.stats
		snap.Stats = &stats
	}
	return snap
}

// Start launches the render task. It stops when ctx is cancelled or Close
// is called.
func (d *Display) Start(ctx context.Context) error {
	d.lifeMu.Lock()
	defer d.lifeMu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.started {
		return ErrAlreadyStarted
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	go d.run(ctx)

	Log.WithField("tick", d.tick).Debug("render task started")
	return nil
}

// Close stops the render task and waits for it to exit
func (d *Display) Close() error {
	d.lifeMu.Lock()
	defer d.lifeMu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if d.started {
		d.cancel()
		<-d.done
		Log.Debug("render task stopped")
	}
	return nil
}

// run drains one payload per tick or wake signal
func (d *Display) run(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		if d.HandleData() && d.onUpdate != nil {
			d.onUpdate()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
	}
}
