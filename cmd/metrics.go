// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"net"
	"net/http"

	"github.com/Thermoquad/heliograph/pkg/display"
	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	MetricsLog  = logrus.WithField("module", "PROMETHEUS")
	EndpointUrl = "/metrics"
)

// metricsRunner serves the Prometheus endpoint
type metricsRunner struct {
	listener net.Listener
	server   *http.Server
}

// newRegistry registers every heliograph collector plus the Go runtime ones
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(telemetry.Collectors()...)
	reg.MustRegister(display.Collectors()...)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// startMetrics serves metrics on addr until Close
func startMetrics(addr string) (*metricsRunner, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(EndpointUrl, promhttp.HandlerFor(newRegistry(), promhttp.HandlerOpts{}))

	r := &metricsRunner{
		listener: ln,
		server:   &http.Server{Handler: mux},
	}
	go func() {
		if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			MetricsLog.WithError(err).Error("metrics server stopped")
		}
	}()

	MetricsLog.WithField("addr", ln.Addr().String()).Info("serving metrics")
	return r, nil
}

// Addr returns the bound address
func (r *metricsRunner) Addr() net.Addr {
	return r.listener.Addr()
}

func (r *metricsRunner) Close() error {
	return r.server.Close()
}

// maybeStartMetrics starts the runner when --metrics-addr is set. The
// returned stop function is always safe to call.
func maybeStartMetrics() (func(), error) {
	if metricsAddr == "" {
		return func() {}, nil
	}
	r, err := startMetrics(metricsAddr)
	if err != nil {
		return nil, err
	}
	return func() { r.Close() }, nil
}
