// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedUniform adds n digits spread evenly across all ten bins.
func feedUniform(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.AddDigit(byte(i % 10))
	}
}

func TestEngine_Empty(t *testing.T) {
	e := NewEngine()

	assert.Zero(t, e.Total())
	assert.Zero(t, e.ChiSquared())
	assert.Zero(t, e.Entropy())
	assert.Zero(t, e.MaxDeviation())
	assert.Empty(t, e.Recent())
	assert.Empty(t, e.FirstDigits())
}

// TestEngine_ChiSquaredUniform: 1000 digits split 100 per bin is a
// perfect uniform fit.
func TestEngine_ChiSquaredUniform(t *testing.T) {
	e := NewEngine()
	feedUniform(e, 1000)

	assert.Equal(t, uint64(1000), e.Total())
	assert.InDelta(t, 0.0, e.ChiSquared(), 1e-12)
}

func TestEngine_EntropyUniform(t *testing.T) {
	e := NewEngine()
	feedUniform(e, 1000)

	assert.InDelta(t, MaxEntropyBits, e.Entropy(), 1e-9)
	assert.InDelta(t, 3.321928, e.Entropy(), 1e-6)
}

// TestEngine_MaxDeviationDegenerate: a stream of a single repeated digit
// deviates by 90 percentage points (100% observed vs 10% expected).
func TestEngine_MaxDeviationDegenerate(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 100; i++ {
		e.AddDigit(5)
	}

	assert.InDelta(t, 90.0, e.MaxDeviation(), 1e-12)
}

func TestEngine_Counts(t *testing.T) {
	e := NewEngine()
	e.AddDigit(3)
	e.AddDigit(3)
	e.AddDigit(7)

	counts := e.Counts()
	assert.Equal(t, uint64(2), counts[3])
	assert.Equal(t, uint64(1), counts[7])
	assert.Equal(t, uint64(3), e.Total())
}

// TestEngine_WindowBatchEviction: the 501st digit triggers a single
// batch eviction of the oldest 200, leaving the most recent 301 in
// arrival order.
func TestEngine_WindowBatchEviction(t *testing.T) {
	e := NewEngine()

	for i := 0; i < 500; i++ {
		e.AddDigit(byte(i % 10))
	}
	require.Len(t, e.Recent(), 500)

	e.AddDigit(byte(500 % 10))

	recent := e.Recent()
	require.Len(t, recent, 301)
	for i, d := range recent {
		assert.Equal(t, byte((200+i)%10), d, "window position %d", i)
	}
}

func TestEngine_FirstDigitsPermanent(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 1000; i++ {
		e.AddDigit(byte(i % 10))
	}

	first := e.FirstDigits()
	require.Len(t, first, 200)
	for i, d := range first {
		assert.Equal(t, byte(i%10), d)
	}
}

// TestEngine_AdaptiveSampling verifies the sampling boundaries: every
// 50 digits below 1000, then every 200.
func TestEngine_AdaptiveSampling(t *testing.T) {
	e := NewEngine()
	feedUniform(e, 1000)

	hist := e.MaxDeviationHistory()
	require.Len(t, hist, 20)
	for i := 0; i < 19; i++ {
		assert.Equal(t, uint64((i+1)*50), hist[i].Total)
	}
	assert.Equal(t, uint64(1000), hist[19].Total)

	// All three histories sample on the same cadence.
	assert.Len(t, e.EntropyHistory(), 20)
	assert.Len(t, e.ChiSquaredHistory(), 20)
}

func TestSampleInterval(t *testing.T) {
	tests := []struct {
		total uint64
		want  uint64
	}{
		{1, 50},
		{999, 50},
		{1000, 200},
		{9999, 200},
		{10000, 1000},
		{99999, 1000},
		{100000, 5000},
		{10_000_000, 5000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sampleInterval(tt.total), "total=%d", tt.total)
	}
}

// TestAppendSample_Decimation: exceeding the cap halves the history,
// keeping every second sample in original order.
func TestAppendSample_Decimation(t *testing.T) {
	var h []Sample
	for i := 0; i < historyCap; i++ {
		h = appendSample(h, uint64(i), float64(i))
	}
	require.Len(t, h, historyCap)

	h = appendSample(h, uint64(historyCap), float64(historyCap))
	require.Len(t, h, (historyCap+1+1)/2)

	// Survivors are the even-indexed samples of the pre-decimation run.
	for i, s := range h {
		assert.Equal(t, uint64(2*i), s.Total)
		assert.Equal(t, float64(2*i), s.Value)
	}
}

func TestEngine_Throughput(t *testing.T) {
	e := NewEngine()
	e.start = time.Now().Add(-2 * time.Second)
	feedUniform(e, 1000)

	// ~500 digits/sec with a generous tolerance for test scheduling.
	assert.InDelta(t, 500.0, e.Throughput(), 50.0)
}

// TestEngine_SnapshotConcurrent exercises one writer against concurrent
// snapshot readers; the race detector is the real assertion here.
func TestEngine_SnapshotConcurrent(t *testing.T) {
	e := NewEngine()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		feedUniform(e, 20_000)
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := e.Snapshot()
				assert.LessOrEqual(t, len(snap.Recent), 500)
				assert.LessOrEqual(t, len(snap.First), 200)
			}
		}()
	}

	wg.Wait()

	snap := e.Snapshot()
	assert.Equal(t, uint64(20_000), snap.Total)
	assert.InDelta(t, 0.0, snap.ChiSquared, 1e-12)
	assert.InDelta(t, MaxEntropyBits, snap.Entropy, 1e-9)
}
