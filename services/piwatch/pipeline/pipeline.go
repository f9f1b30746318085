// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline connects the digit generator to the stats engine.
//
// # Description
//
// A producer grows the requested precision exponentially round over
// round and forwards only the digits newly available since the previous
// round. A bounded channel (default capacity 2) carries batches to the
// consumer; when the consumer falls behind, the producer's send blocks,
// which is the backpressure contract that bounds memory growth. A shared
// Token stops both sides cooperatively.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/piwatch/services/piwatch/stats"
	"github.com/AleutianAI/piwatch/services/piwatch/telemetry"
)

// Generator produces the first n fractional digits of pi as values 0-9.
// It must be deterministic and prefix-stable across calls.
// chudnovsky.Digits satisfies this.
type Generator func(n int) []byte

// Config holds the pipeline tuning knobs.
type Config struct {
	// StartTarget is the digit count of the first round.
	// Default: 1000.
	StartTarget int

	// MaxTarget caps the per-round digit count so worst-case round cost
	// stays bounded. Default: 2,000,000.
	MaxTarget int

	// QueueCapacity is the bounded channel size between producer and
	// consumer. Default: 2.
	QueueCapacity int
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.StartTarget == 0 {
		c.StartTarget = 1000
	}
	if c.MaxTarget == 0 {
		c.MaxTarget = 2_000_000
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 2
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.StartTarget < 1 {
		return fmt.Errorf("start target must be >= 1, got %d", c.StartTarget)
	}
	if c.MaxTarget < c.StartTarget {
		return fmt.Errorf("max target %d must be >= start target %d", c.MaxTarget, c.StartTarget)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue capacity must be >= 1, got %d", c.QueueCapacity)
	}
	return nil
}

// Pipeline is one producer/consumer run.
//
// # Thread Safety
//
// Run may be called once. Accessors (Rounds) are safe for concurrent
// use while Run is in flight.
type Pipeline struct {
	cfg     Config
	gen     Generator
	engine  *stats.Engine
	token   *Token
	logger  *slog.Logger
	metrics *telemetry.Metrics

	batches chan []byte
	rounds  atomic.Uint64
}

// New creates a pipeline.
//
// # Inputs
//
//   - cfg: Tuning knobs. Zero values use defaults.
//   - gen: Digit generator. Must not be nil.
//   - engine: Stats engine fed by the consumer. Must not be nil.
//   - token: Shared cancellation token. Must not be nil.
//   - logger: Logger for round events. If nil, uses slog.Default().
//   - metrics: Optional telemetry. Nil disables recording.
//
// # Outputs
//
//   - *Pipeline: Ready to Run. Nil on error.
//   - error: Non-nil if cfg is invalid or a dependency is missing.
func New(cfg Config, gen Generator, engine *stats.Engine, token *Token, logger *slog.Logger, metrics *telemetry.Metrics) (*Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stats engine is required")
	}
	if token == nil {
		return nil, fmt.Errorf("cancellation token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg:     cfg,
		gen:     gen,
		engine:  engine,
		token:   token,
		logger:  logger.With(slog.String("component", "pipeline")),
		metrics: metrics,
		batches: make(chan []byte, cfg.QueueCapacity),
	}, nil
}

// Run executes producer and consumer until the token is cancelled or
// ctx is done. Context cancellation is translated into a token cancel
// so both flows observe a single signal.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-ctx.Done():
			p.token.Cancel()
		case <-p.token.Done():
		}
		return nil
	})

	g.Go(func() error { return p.produce(ctx) })
	g.Go(func() error { return p.consume() })

	return g.Wait()
}

// Rounds returns the number of completed hand-offs so far.
func (p *Pipeline) Rounds() uint64 {
	return p.rounds.Load()
}

// produce runs precision rounds, doubling the target each time up to
// the cap, and hands the newly computed digit suffix to the consumer.
//
// Each round recomputes the full expansion from scratch; the split tree
// is not cached across rounds. That keeps rounds reproducible at the
// price of redundant work, and the exponential target growth assumes it.
func (p *Pipeline) produce(ctx context.Context) error {
	computed := 0
	target := p.cfg.StartTarget

	for p.token.Alive() {
		start := time.Now()
		all := p.gen(target)
		batch := all[computed:]
		elapsed := time.Since(start)

		select {
		case p.batches <- batch:
		case <-p.token.Done():
			// Hand-off abandoned: consumer is gone. Terminal, not an error.
			return nil
		}

		p.rounds.Add(1)
		p.metrics.RecordRound(ctx, int64(target), int64(len(batch)), elapsed)
		p.logger.Debug("precision round complete",
			slog.Int("target", target),
			slog.Int("new_digits", len(batch)),
			slog.Duration("elapsed", elapsed))

		computed = target
		target = min(target*2, p.cfg.MaxTarget)
	}
	return nil
}

// consume feeds batches into the stats engine one digit at a time, in
// arrival order. After waking for a batch it opportunistically drains
// whatever else is already queued without blocking.
func (p *Pipeline) consume() error {
	for {
		select {
		case <-p.token.Done():
			return nil
		case batch := <-p.batches:
			p.ingest(batch)
		drain:
			for {
				select {
				case more := <-p.batches:
					p.ingest(more)
				default:
					break drain
				}
			}
		}
	}
}

func (p *Pipeline) ingest(batch []byte) {
	for _, d := range batch {
		p.engine.AddDigit(d)
	}
}
