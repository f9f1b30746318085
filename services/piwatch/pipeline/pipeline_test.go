// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/piwatch/services/piwatch/stats"
)

// fakeDigits is a deterministic, prefix-stable stand-in for the real
// generator: digit i of the stream is i mod 10.
func fakeDigits(n int) []byte {
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 10)
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, cfg Config) (*Pipeline, *stats.Engine, *Token) {
	t.Helper()
	engine := stats.NewEngine()
	token := NewToken()
	p, err := New(cfg, fakeDigits, engine, token, quietLogger(), nil)
	require.NoError(t, err)
	return p, engine, token
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, 1000, cfg.StartTarget)
	assert.Equal(t, 2_000_000, cfg.MaxTarget)
	assert.Equal(t, 2, cfg.QueueCapacity)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{StartTarget: 1000, MaxTarget: 2_000_000, QueueCapacity: 2}, false},
		{"minimal", Config{StartTarget: 1, MaxTarget: 1, QueueCapacity: 1}, false},
		{"zero start", Config{StartTarget: 0, MaxTarget: 100, QueueCapacity: 2}, true},
		{"max below start", Config{StartTarget: 100, MaxTarget: 50, QueueCapacity: 2}, true},
		{"zero capacity", Config{StartTarget: 100, MaxTarget: 200, QueueCapacity: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_MissingDependencies(t *testing.T) {
	engine := stats.NewEngine()
	token := NewToken()

	_, err := New(Config{}, nil, engine, token, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{}, fakeDigits, nil, token, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{}, fakeDigits, engine, nil, nil, nil)
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	token := NewToken()
	assert.True(t, token.Alive())

	select {
	case <-token.Done():
		t.Fatal("done channel closed before cancel")
	default:
	}

	token.Cancel()
	token.Cancel() // idempotent

	assert.False(t, token.Alive())
	select {
	case <-token.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after cancel")
	}
}

// TestPipeline_Backpressure: with queue capacity 2 and a paused
// consumer, the producer completes exactly two hand-offs and blocks on
// the third until a batch is drained.
func TestPipeline_Backpressure(t *testing.T) {
	p, _, token := newTestPipeline(t, Config{StartTarget: 10, MaxTarget: 1000, QueueCapacity: 2})

	done := make(chan error, 1)
	go func() { done <- p.produce(context.Background()) }()

	require.Eventually(t, func() bool { return p.Rounds() == 2 },
		time.Second, time.Millisecond)

	// Producer must now be parked on the third send.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, uint64(2), p.Rounds())

	// Draining one batch frees the slot.
	<-p.batches
	require.Eventually(t, func() bool { return p.Rounds() == 3 },
		time.Second, time.Millisecond)

	token.Cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer did not exit after cancel")
	}
}

// TestPipeline_Run delivers every digit up to the target cap into the
// stats engine, in order.
func TestPipeline_Run(t *testing.T) {
	p, engine, token := newTestPipeline(t, Config{StartTarget: 10, MaxTarget: 80, QueueCapacity: 2})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	// Rounds: 10, 20, 40, 80, then empty suffixes at the cap.
	require.Eventually(t, func() bool { return engine.Total() == 80 },
		5*time.Second, time.Millisecond)

	counts := engine.Counts()
	for d := 0; d < 10; d++ {
		assert.Equal(t, uint64(8), counts[d], "digit %d", d)
	}

	token.Cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after cancel")
	}
}

// TestPipeline_ContextCancel: cancelling the context cancels the token
// and stops both flows.
func TestPipeline_ContextCancel(t *testing.T) {
	p, _, token := newTestPipeline(t, Config{StartTarget: 10, MaxTarget: 80, QueueCapacity: 2})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after context cancel")
	}
	assert.False(t, token.Alive())
}
