// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/stretchr/testify/require"
)

func newTestDisplay(t *testing.T, cfg Config) *Display {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 7
	}
	d := New(cfg)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDisplay_MixedPayloadScenario(t *testing.T) {
	d := newTestDisplay(t, Config{})

	d.PushData("cpu::42\nRAM::17\nhello world\ntemp::abc\n+++CP\n")
	require.True(t, d.HandleData())

	snap := d.Snapshot()
	require.Empty(t, snap.Series)
	require.False(t, snap.RangeValid)
	require.Equal(t, []string{"hello world", "temp::abc"}, snap.Logs)
}

func TestDisplay_SeriesFromPayload(t *testing.T) {
	d := newTestDisplay(t, Config{MaxPointCount: 3})

	d.PushData("cpu::42\nRAM::17\ncpu::50")
	require.True(t, d.HandleData())

	snap := d.Snapshot()
	require.Len(t, snap.Series, 2)
	require.Equal(t, "cpu", snap.Series[0].Name)
	require.Len(t, snap.Series[0].Samples, 3)
	require.Equal(t, Sample{Value: 50, Valid: true}, snap.Series[0].Samples[2])
	require.True(t, snap.RangeValid)
	require.Equal(t, int64(17), snap.RangeMin)
	require.Equal(t, int64(50), snap.RangeMax)
}

func TestDisplay_FallbackDoesNotCreateSeries(t *testing.T) {
	d := newTestDisplay(t, Config{})

	d.PushData("temp::abc")
	require.True(t, d.HandleData())

	snap := d.Snapshot()
	require.Empty(t, snap.Series)
	require.Equal(t, []string{"temp::abc"}, snap.Logs)
}

func TestDisplay_HandleDataDrainsOnePayloadPerCall(t *testing.T) {
	d := newTestDisplay(t, Config{})

	const n = 5
	for i := 0; i < n; i++ {
		d.PushData(fmt.Sprintf("line %d", i))
	}

	for i := 0; i < n; i++ {
		require.True(t, d.HandleData())
		require.Equal(t, n-i-1, d.Snapshot().Queued)
		require.Len(t, d.Snapshot().Logs, i+1)
	}
	require.False(t, d.HandleData())
}

func TestDisplay_HandleDataReportsNoChange(t *testing.T) {
	d := newTestDisplay(t, Config{})

	d.PushData("+++NOPE")
	require.False(t, d.HandleData())
	d.PushData("")
	require.False(t, d.HandleData())
	require.Zero(t, d.Snapshot().Queued)
}

func TestDisplay_QueueBound(t *testing.T) {
	d := newTestDisplay(t, Config{MaxQueued: 2})

	d.PushData("a")
	d.PushData("b")
	d.PushData("c")

	snap := d.Snapshot()
	require.Equal(t, 2, snap.Queued)
	require.Equal(t, uint64(1), snap.Dropped)

	require.True(t, d.HandleData())
	require.Equal(t, []string{"b"}, d.Snapshot().Logs)
}

func TestDisplay_ExternalOperations(t *testing.T) {
	d := newTestDisplay(t, Config{})

	d.AddInfo("listening on 0.0.0.0:5555")
	d.AddInfo("second")
	require.Equal(t, []string{"listening on 0.0.0.0:5555", "second"}, d.Snapshot().Info)
	d.ClearInfo()
	require.Empty(t, d.Snapshot().Info)

	d.PushData("x::1\nlog line")
	d.HandleData()
	d.ClearLogs()
	require.Empty(t, d.Snapshot().Logs)
	require.Len(t, d.Snapshot().Series, 1)

	d.ClearPlots()
	snap := d.Snapshot()
	require.Empty(t, snap.Series)
	require.False(t, snap.RangeValid)
}

func TestDisplay_SwitchTab(t *testing.T) {
	d := newTestDisplay(t, Config{})
	require.Equal(t, TabPlots, d.ActiveTab())
	require.Equal(t, TabLogs, d.SwitchTab())
	require.Equal(t, TabInfo, d.SwitchTab())
	require.Equal(t, TabPlots, d.SwitchTab())

	d.SelectTab(TabInfo)
	require.Equal(t, TabInfo, d.ActiveTab())
	d.SelectTab(Tab(9))
	require.Equal(t, TabInfo, d.ActiveTab())

	require.Equal(t, "Plots", TabPlots.String())
	require.Equal(t, "Logs", TabLogs.String())
	require.Equal(t, "Info", TabInfo.String())
}

func TestDisplay_ClearActive(t *testing.T) {
	d := newTestDisplay(t, Config{})
	d.PushData("x::1\nhello")
	d.HandleData()
	d.AddInfo("info")

	d.SelectTab(TabLogs)
	d.ClearActive()
	snap := d.Snapshot()
	require.Empty(t, snap.Logs)
	require.Len(t, snap.Series, 1)
	require.Len(t, snap.Info, 1)

	d.SelectTab(TabPlots)
	d.ClearActive()
	require.Empty(t, d.Snapshot().Series)
}

func TestDisplay_SetChartMaxPointCount(t *testing.T) {
	d := newTestDisplay(t, Config{MaxPointCount: 5})
	d.PushData("a::1\na::2\na::3")
	d.HandleData()

	d.SetChartMaxPointCount(2)
	require.Equal(t, 2, d.ChartMaxPointCount())
	snap := d.Snapshot()
	require.Equal(t, []Sample{{Value: 2, Valid: true}, {Value: 3, Valid: true}}, snap.Series[0].Samples)
	require.Equal(t, int64(2), snap.RangeMin)

	d.SetChartMaxPointCount(0)
	require.Equal(t, 1, d.ChartMaxPointCount())
}

func TestDisplay_Statistics(t *testing.T) {
	d := newTestDisplay(t, Config{})
	d.SetStatistics(telemetry.NewStatistics())

	d.PushData("a::1\nb\nc::x")
	d.HandleData()

	stats := d.Snapshot().Stats
	require.NotNil(t, stats)
	require.Equal(t, uint64(3), stats.TotalLines)
	require.Equal(t, uint64(1), stats.Fallbacks)
}

func TestDisplay_SnapshotStatsWhileRendering(t *testing.T) {
	d := newTestDisplay(t, Config{TickPeriod: time.Millisecond})
	d.SetStatistics(telemetry.NewStatistics())
	require.NoError(t, d.Start(context.Background()))

	for i := 0; i < 200; i++ {
		d.PushData(fmt.Sprintf("cpu::%d", i))
	}

	// each snapshot carries its own copy, so formatting it never touches
	// the tracker the render task is writing
	for d.Snapshot().Queued > 0 {
		stats := d.Snapshot().Stats
		require.NotNil(t, stats)
		require.Contains(t, stats.String(), "Payloads:")
	}

	require.NoError(t, d.Close())
	stats := d.Snapshot().Stats
	require.Equal(t, uint64(200), stats.TotalPayloads)
	require.Equal(t, uint64(200), stats.DataPoints)
}

func TestDisplay_Views(t *testing.T) {
	d := newTestDisplay(t, Config{Width: 60, Height: 12})
	require.Contains(t, d.View(), "waiting for data")

	d.PushData("cpu::10\ncpu::20\nmem::15\nboot complete")
	d.HandleData()
	plots := d.View()
	require.Contains(t, plots, "cpu")
	require.Contains(t, plots, "mem")

	d.SelectTab(TabLogs)
	require.Contains(t, d.View(), "boot complete")

	d.SelectTab(TabInfo)
	require.Contains(t, d.View(), "no info")
	d.AddInfo("listening")
	require.Contains(t, d.View(), "listening")

	// tiny areas fall back to the legend alone
	d.Resize(10, 3)
	d.SelectTab(TabPlots)
	require.Contains(t, d.View(), "cpu")
}

func TestDisplay_LogViewFollowsNewest(t *testing.T) {
	d := newTestDisplay(t, Config{Width: 40, Height: 3})
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("line-%02d", i))
	}
	d.PushData(strings.Join(lines, "\n"))
	d.HandleData()

	d.SelectTab(TabLogs)
	view := d.View()
	require.Contains(t, view, "line-19")
	require.NotContains(t, view, "line-00")
}

func TestDisplay_RenderTask(t *testing.T) {
	var updates atomic.Int32
	d := newTestDisplay(t, Config{
		TickPeriod: time.Millisecond,
		OnUpdate:   func() { updates.Add(1) },
	})

	require.NoError(t, d.Start(context.Background()))
	require.ErrorIs(t, d.Start(context.Background()), ErrAlreadyStarted)

	for i := 0; i < 10; i++ {
		d.PushData(fmt.Sprintf("n::%d", i))
	}

	require.Eventually(t, func() bool {
		return d.Snapshot().Queued == 0
	}, 2*time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return updates.Load() == 10
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	require.ErrorIs(t, d.Start(context.Background()), ErrClosed)

	// nothing drains after Close
	d.PushData("late")
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 1, d.Snapshot().Queued)
}

func TestDisplay_RenderTaskStopsWithContext(t *testing.T) {
	d := newTestDisplay(t, Config{TickPeriod: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		_ = d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after context cancel")
	}
}

func TestDisplay_ConcurrentAccess(t *testing.T) {
	d := newTestDisplay(t, Config{TickPeriod: time.Millisecond, MaxQueued: 0})
	require.NoError(t, d.Start(context.Background()))

	const producers = 4
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				d.PushData(fmt.Sprintf("s%d::%d\nlog %d %d", p, i, p, i))
			}
		}(p)
	}

	// console style callers racing the render task
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			d.SwitchTab()
			d.AddInfo("tick")
			d.SetChartMaxPointCount(10 + i%5)
			_ = d.View()
		}
	}()
	wg.Wait()

	// drain whatever the render task has not reached yet
	for d.HandleData() {
	}
	require.NoError(t, d.Close())
	for d.HandleData() {
	}

	snap := d.Snapshot()
	require.Zero(t, snap.Queued)
	require.Len(t, snap.Logs, producers*perProducer)
	require.Len(t, snap.Series, producers)
}
