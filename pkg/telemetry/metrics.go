// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heliograph",
		Name:      "lines_total",
		Help:      "Protocol lines dispatched, by kind",
	},
		[]string{"kind"},
	)
	FallbackLinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heliograph",
		Name:      "fallback_lines_total",
		Help:      "Data lines that became log lines, by reason",
	},
		[]string{"reason"},
	)
)

// Collectors returns the collectors owned by this package
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{LinesTotal, FallbackLinesTotal}
}

func observeLine(l Line) {
	LinesTotal.WithLabelValues(l.Kind.String()).Inc()
	if l.Fallback {
		FallbackLinesTotal.WithLabelValues(FallbackReason(l.FallbackErr)).Inc()
	}
}
