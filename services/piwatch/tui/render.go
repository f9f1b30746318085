// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/AleutianAI/piwatch/services/piwatch/stats"
)

// sparkBlocks are the eighth-height block characters, lowest to highest.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline renders the tail of a trend history as unicode block
// characters, scaled to the maximum value in view.
func sparkline(history []stats.Sample, maxWidth int) string {
	if len(history) == 0 || maxWidth <= 0 {
		return ""
	}

	display := history
	if len(display) > maxWidth {
		display = display[len(display)-maxWidth:]
	}

	maxVal := 0.001
	for _, s := range display {
		if s.Value > maxVal {
			maxVal = s.Value
		}
	}

	var b strings.Builder
	for _, s := range display {
		idx := int(math.Round(s.Value / maxVal * 7))
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// groupDigits formats n with thousands separators.
func groupDigits(n uint64) string {
	s := strconv.FormatUint(n, 10)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// digitRunes renders digit values 0-9 as their characters.
func digitRunes(digits []byte) string {
	out := make([]byte, len(digits))
	for i, d := range digits {
		out[i] = d + '0'
	}
	return string(out)
}
