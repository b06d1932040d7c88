// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PayloadsQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "heliograph",
		Name:      "payloads_queued_total",
		Help:      "Payloads pushed into the ingestion queue",
	})
	PayloadsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "heliograph",
		Name:      "payloads_dropped_total",
		Help:      "Payloads dropped because the ingestion queue was full",
	})
	PayloadsHandled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "heliograph",
		Name:      "payloads_handled_total",
		Help:      "Payloads dispatched by the render task",
	})
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "heliograph",
		Name:      "queue_depth",
		Help:      "Payloads waiting in the ingestion queue",
	})
	SeriesCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "heliograph",
		Name:      "series",
		Help:      "Live chart series",
	})
)

// Collectors returns the collectors owned by this package
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		PayloadsQueued,
		PayloadsDropped,
		PayloadsHandled,
		QueueDepth,
		SeriesCount,
	}
}
