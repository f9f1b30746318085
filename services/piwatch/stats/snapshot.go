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

// Snapshot is a point-in-time copy of everything the presentation layer
// needs, taken under a single read lock.
//
// # Description
//
// The consumer goroutine mutates the engine while the UI renders, so
// renderers work from a Snapshot rather than poking at live state. All
// slices are copies; the caller owns them.
type Snapshot struct {
	// Counts holds the per-digit counters.
	Counts [10]uint64

	// Total is the number of digits consumed.
	Total uint64

	// ChiSquared, Entropy, MaxDeviation, and Throughput are the derived
	// metrics at snapshot time.
	ChiSquared   float64
	Entropy      float64
	MaxDeviation float64
	Throughput   float64

	// First is the permanent leading prefix of the expansion.
	First []byte

	// Recent is the recent-digits window, oldest first.
	Recent []byte

	// Trend histories, oldest first.
	MaxDevHistory  []Sample
	EntropyHistory []Sample
	ChiSqHistory   []Sample
}

// Snapshot returns a consistent copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	first := make([]byte, len(e.first))
	copy(first, e.first)

	recent := make([]byte, len(e.window))
	copy(recent, e.window)

	return Snapshot{
		Counts:         e.counts,
		Total:          e.total,
		ChiSquared:     e.chiSquaredLocked(),
		Entropy:        e.entropyLocked(),
		MaxDeviation:   e.maxDeviationLocked(),
		Throughput:     e.throughputLocked(),
		First:          first,
		Recent:         recent,
		MaxDevHistory:  copySamples(e.maxDevHistory),
		EntropyHistory: copySamples(e.entropyHistory),
		ChiSqHistory:   copySamples(e.chiSqHistory),
	}
}
