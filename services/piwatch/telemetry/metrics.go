// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the pre-defined instruments for piwatch.
//
// # Description
//
// Counters and histograms covering digit production. All instruments use
// the "piwatch_" prefix. A nil *Metrics is valid and records nothing,
// so callers never need to branch on whether telemetry is enabled.
//
// # Thread Safety
//
// Safe for concurrent use after creation.
type Metrics struct {
	// DigitsTotal counts digits handed to the consumer.
	DigitsTotal metric.Int64Counter

	// RoundsTotal counts completed precision rounds.
	RoundsTotal metric.Int64Counter

	// RoundDuration records per-round computation time in seconds.
	RoundDuration metric.Float64Histogram

	// RoundTarget records the most recent precision target.
	RoundTarget metric.Int64Gauge
}

// NewMetrics creates all instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.DigitsTotal, err = meter.Int64Counter("piwatch_digits_total",
		metric.WithDescription("Total pi digits produced"),
		metric.WithUnit("{digit}"))
	if err != nil {
		return nil, fmt.Errorf("create digits counter: %w", err)
	}

	m.RoundsTotal, err = meter.Int64Counter("piwatch_rounds_total",
		metric.WithDescription("Total completed precision rounds"),
		metric.WithUnit("{round}"))
	if err != nil {
		return nil, fmt.Errorf("create rounds counter: %w", err)
	}

	m.RoundDuration, err = meter.Float64Histogram("piwatch_round_duration_seconds",
		metric.WithDescription("Per-round Chudnovsky computation time"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create round duration histogram: %w", err)
	}

	m.RoundTarget, err = meter.Int64Gauge("piwatch_round_target_digits",
		metric.WithDescription("Precision target of the most recent round"),
		metric.WithUnit("{digit}"))
	if err != nil {
		return nil, fmt.Errorf("create round target gauge: %w", err)
	}

	return m, nil
}

// RecordRound records one completed precision round. Safe on a nil
// receiver.
func (m *Metrics) RecordRound(ctx context.Context, target, newDigits int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RoundsTotal.Add(ctx, 1)
	m.DigitsTotal.Add(ctx, newDigits)
	m.RoundDuration.Record(ctx, elapsed.Seconds())
	m.RoundTarget.Record(ctx, target)
}
