// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats maintains live distributional statistics over an
// unbounded decimal digit stream.
//
// # Description
//
// The engine keeps exact per-digit counts and derives normality metrics
// (chi-squared, Shannon entropy, maximum percentage deviation) on demand.
// Trend histories are sampled at adaptive intervals and periodically
// decimated, so memory stays bounded no matter how many digits arrive.
//
// # Thread Safety
//
// Engine is safe for concurrent use. The intended shape is a single
// writer calling AddDigit and any number of readers taking Snapshot.
package stats

import (
	"math"
	"sync"
	"time"
)

const (
	// windowCap bounds the recent-digits window; windowEvict is the batch
	// dropped from the front once the cap is exceeded. Batch eviction
	// keeps the amortized cost of the copy negligible.
	windowCap   = 500
	windowEvict = 200

	// firstDigitsCap is how much of the leading expansion is kept
	// permanently for display.
	firstDigitsCap = 200

	// historyCap bounds each trend history; above it the history is
	// halved by keeping every second sample.
	historyCap = 300
)

// MaxEntropyBits is the entropy of a perfectly uniform 10-bin
// distribution, log2(10).
var MaxEntropyBits = math.Log2(10)

// Sample is one trend-history entry, keyed by the total digit count at
// the time it was recorded.
type Sample struct {
	// Total is the stream position when the sample was taken.
	Total uint64

	// Value is the metric value at that position.
	Value float64
}

// Engine accumulates digit counts and bounded trend histories.
type Engine struct {
	mu sync.RWMutex

	counts [10]uint64
	total  uint64

	first  []byte
	window []byte

	maxDevHistory  []Sample
	entropyHistory []Sample
	chiSqHistory   []Sample

	start time.Time
}

// NewEngine creates an engine with the throughput clock started now.
func NewEngine() *Engine {
	return &Engine{
		first:  make([]byte, 0, firstDigitsCap),
		window: make([]byte, 0, windowCap+1),
		start:  time.Now(),
	}
}

// sampleInterval returns how often (in digits) trend histories are
// sampled at the given stream position. Early on every 50th digit is
// interesting; past 100k only every 5000th is.
func sampleInterval(total uint64) uint64 {
	switch {
	case total <= 999:
		return 50
	case total <= 9_999:
		return 200
	case total <= 99_999:
		return 1_000
	default:
		return 5_000
	}
}

// AddDigit feeds one digit (0-9) into the engine.
//
// # Description
//
// Updates counts, the permanent leading prefix, and the recent-digits
// window, then samples the trend histories when the stream position
// crosses an adaptive sampling boundary. O(1) amortized.
func (e *Engine) AddDigit(d byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.counts[d]++
	e.total++

	if len(e.first) < firstDigitsCap {
		e.first = append(e.first, d)
	}

	e.window = append(e.window, d)
	if len(e.window) > windowCap {
		n := copy(e.window, e.window[windowEvict:])
		e.window = e.window[:n]
	}

	if e.total%sampleInterval(e.total) == 0 {
		e.maxDevHistory = appendSample(e.maxDevHistory, e.total, e.maxDeviationLocked())
		e.entropyHistory = appendSample(e.entropyHistory, e.total, e.entropyLocked())
		e.chiSqHistory = appendSample(e.chiSqHistory, e.total, e.chiSquaredLocked())
	}
}

// appendSample appends one sample and halves the history in place when
// it exceeds the cap, keeping every second sample in order.
func appendSample(h []Sample, total uint64, v float64) []Sample {
	h = append(h, Sample{Total: total, Value: v})
	if len(h) > historyCap {
		kept := h[:0]
		for i := 0; i < len(h); i += 2 {
			kept = append(kept, h[i])
		}
		h = kept
	}
	return h
}

func (e *Engine) chiSquaredLocked() float64 {
	if e.total == 0 {
		return 0
	}
	expected := float64(e.total) / 10
	var sum float64
	for _, c := range e.counts {
		d := float64(c) - expected
		sum += d * d / expected
	}
	return sum
}

func (e *Engine) entropyLocked() float64 {
	if e.total == 0 {
		return 0
	}
	t := float64(e.total)
	var sum float64
	for _, c := range e.counts {
		if c == 0 {
			continue
		}
		p := float64(c) / t
		sum += p * math.Log2(p)
	}
	return -sum
}

func (e *Engine) maxDeviationLocked() float64 {
	if e.total == 0 {
		return 0
	}
	var max float64
	for _, c := range e.counts {
		dev := math.Abs(float64(c)/float64(e.total)*100 - 10)
		if dev > max {
			max = dev
		}
	}
	return max
}

func (e *Engine) throughputLocked() float64 {
	elapsed := time.Since(e.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(e.total) / elapsed
}

// ChiSquared returns the chi-squared statistic of the digit counts
// against a uniform expectation. 0 when no digits have arrived.
func (e *Engine) ChiSquared() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chiSquaredLocked()
}

// Entropy returns the Shannon entropy of the empirical digit
// distribution in bits. Maximum is MaxEntropyBits.
func (e *Engine) Entropy() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.entropyLocked()
}

// MaxDeviation returns the largest absolute deviation of any digit's
// share from 10%, in percentage points.
func (e *Engine) MaxDeviation() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.maxDeviationLocked()
}

// Throughput returns digits per second since the engine was created.
func (e *Engine) Throughput() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.throughputLocked()
}

// Total returns the number of digits consumed so far.
func (e *Engine) Total() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.total
}

// Counts returns a copy of the per-digit counters.
func (e *Engine) Counts() [10]uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.counts
}

// Recent returns a copy of the recent-digits window, oldest first.
func (e *Engine) Recent() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]byte, len(e.window))
	copy(out, e.window)
	return out
}

// FirstDigits returns a copy of the permanent leading prefix of the
// expansion (up to 200 digits).
func (e *Engine) FirstDigits() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]byte, len(e.first))
	copy(out, e.first)
	return out
}

// MaxDeviationHistory returns a copy of the max-deviation trend history.
func (e *Engine) MaxDeviationHistory() []Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copySamples(e.maxDevHistory)
}

// EntropyHistory returns a copy of the entropy trend history.
func (e *Engine) EntropyHistory() []Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copySamples(e.entropyHistory)
}

// ChiSquaredHistory returns a copy of the chi-squared trend history.
func (e *Engine) ChiSquaredHistory() []Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copySamples(e.chiSqHistory)
}

func copySamples(h []Sample) []Sample {
	if len(h) == 0 {
		return nil
	}
	out := make([]Sample, len(h))
	copy(out, h)
	return out
}
