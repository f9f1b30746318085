// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry exposes piwatch metrics over a Prometheus endpoint.
//
// # Description
//
// Wires the OpenTelemetry metric API to the Prometheus exporter and
// serves /metrics on a configurable address. Telemetry is entirely
// optional: with no listen address configured, Setup returns a disabled
// handle whose Metrics are nil (and nil Metrics record nothing).
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies this instrumentation scope.
const meterName = "github.com/AleutianAI/piwatch"

// Telemetry is a running (or disabled) telemetry stack.
type Telemetry struct {
	// Metrics is nil when telemetry is disabled.
	Metrics *Metrics

	provider *sdkmetric.MeterProvider
	server   *http.Server
	logger   *slog.Logger
}

// Setup initializes metrics and starts the /metrics HTTP listener.
//
// # Inputs
//
//   - listen: Address for the Prometheus endpoint, e.g. ":9090".
//     Empty disables telemetry entirely.
//   - logger: Logger for serve errors. If nil, uses slog.Default().
//
// # Outputs
//
//   - *Telemetry: Never nil. Call Shutdown when done.
//   - error: Non-nil if exporter or instrument creation fails.
func Setup(listen string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "telemetry"))

	if listen == "" {
		return &Telemetry{logger: logger}, nil
	}

	// The exporter registers with the default Prometheus registry, so
	// promhttp.Handler() picks up every instrument created below.
	exporter, err := promexporter.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	metrics, err := NewMetrics(provider.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	t := &Telemetry{
		Metrics:  metrics,
		provider: provider,
		server:   server,
		logger:   logger,
	}

	go func() {
		logger.Info("metrics endpoint listening", slog.String("addr", listen))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint failed", slog.String("error", err.Error()))
		}
	}()

	return t, nil
}

// Shutdown stops the HTTP listener and flushes the meter provider.
// Safe to call on a disabled handle.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}
	if t.provider != nil {
		if err := t.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
