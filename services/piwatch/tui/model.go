// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui renders the live normality dashboard.
//
// # Description
//
// A bubbletea model that redraws on a fixed tick, reading the stats
// engine through point-in-time snapshots only. Quitting cancels the
// shared pipeline token, so closing the dashboard is the shutdown signal
// for the whole run.
//
// # Thread Safety
//
// The model runs single-threaded inside the bubbletea event loop. All
// shared state is reached via stats.Engine.Snapshot and pipeline.Token,
// which are concurrency-safe.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/piwatch/services/piwatch/pipeline"
	"github.com/AleutianAI/piwatch/services/piwatch/stats"
)

// chiSquaredThreshold is the critical chi-squared value for 9 degrees
// of freedom at p=0.05. Below it the distribution reads as uniform.
const chiSquaredThreshold = 16.919

// tickMsg drives the redraw cadence.
type tickMsg time.Time

// keyMap defines the dashboard key bindings.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Help, k.Quit}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// Model is the dashboard state.
type Model struct {
	engine  *stats.Engine
	token   *pipeline.Token
	refresh time.Duration

	snap   stats.Snapshot
	keys   keyMap
	help   help.Model
	width  int
	height int

	quitting bool
}

// NewModel creates a dashboard over the given engine and token.
//
// # Inputs
//
//   - engine: Stats engine to snapshot each frame. Must not be nil.
//   - token: Shared cancellation token; cancelled when the user quits.
//   - refresh: Redraw interval. <= 0 uses 50ms.
func NewModel(engine *stats.Engine, token *pipeline.Token, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = 50 * time.Millisecond
	}
	return Model{
		engine:  engine,
		token:   token,
		refresh: refresh,
		keys:    defaultKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.token.Cancel()
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tickMsg:
		m.snap = m.engine.Snapshot()
		return m, m.tick()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	sep := dimStyle.Render(strings.Repeat("─", m.width))

	b.WriteString(m.titleLine())
	b.WriteByte('\n')
	b.WriteString(sep)
	b.WriteByte('\n')
	m.writeBars(&b)
	b.WriteString(sep)
	b.WriteByte('\n')
	b.WriteString(m.piLine())
	b.WriteByte('\n')
	b.WriteString(m.latestLine())
	b.WriteByte('\n')
	b.WriteString(sep)
	b.WriteByte('\n')
	b.WriteString(m.statsLine())
	b.WriteByte('\n')
	b.WriteByte('\n')
	m.writeSparklines(&b)
	b.WriteByte('\n')
	b.WriteString("  " + m.help.View(m.keys))
	b.WriteByte('\n')

	return b.String()
}

func (m Model) titleLine() string {
	return titleStyle.Render(fmt.Sprintf(
		"  Pi Normal Number Test — %s digits (%.0f d/s)     [Chudnovsky Binary Splitting]",
		groupDigits(m.snap.Total), m.snap.Throughput))
}

// writeBars renders the per-digit frequency chart, one row per digit.
func (m Model) writeBars(b *strings.Builder) {
	maxCount := uint64(1)
	for _, c := range m.snap.Counts {
		if c > maxCount {
			maxCount = c
		}
	}

	barMax := m.width - 36
	if barMax < 10 {
		barMax = 10
	}

	for i, count := range m.snap.Counts {
		pct := 0.0
		if m.snap.Total > 0 {
			pct = float64(count) / float64(m.snap.Total) * 100
		}
		barLen := int(float64(count) / float64(maxCount) * float64(barMax))

		fmt.Fprintf(b, "  %d │ %s %8s (%5.2f%% %+6.2f%%)\n",
			i,
			barStyles[i].Render(strings.Repeat("█", barLen)),
			groupDigits(count),
			pct,
			pct-10)
	}
}

// piLine shows the permanent leading expansion, which never changes
// once produced.
func (m Model) piLine() string {
	shown := digitRunes(m.snap.First)
	avail := m.width - 14
	if avail < 0 {
		avail = 0
	}
	if len(shown) > avail {
		shown = shown[:avail]
	}
	ellipsis := ""
	if m.snap.Total > uint64(len(m.snap.First)) {
		ellipsis = dimStyle.Render("...")
	}
	return titleStyle.Render("  Pi = 3.") + shown + ellipsis
}

// latestLine shows the tail of the live digit feed.
func (m Model) latestLine() string {
	recent := digitRunes(m.snap.Recent)
	avail := m.width - 16
	if avail < 0 {
		avail = 0
	}
	if len(recent) > avail {
		recent = recent[len(recent)-avail:]
	}
	return dimStyle.Render("  Latest: ...") + recent
}

func (m Model) statsLine() string {
	if m.snap.Total == 0 {
		return dimStyle.Render("  waiting for digits...")
	}

	verdict := uniformStyle.Render("UNIFORM")
	if m.snap.ChiSquared >= chiSquaredThreshold {
		verdict = skewedStyle.Render("SKEWED")
	}

	entPct := m.snap.Entropy / stats.MaxEntropyBits * 100

	return fmt.Sprintf("  %s%-8.3f %s   Entropy: %.4f/%.4f bits (%.2f%%)   |dev|max: %.3f%%",
		titleStyle.Render("χ²= "),
		m.snap.ChiSquared,
		verdict,
		m.snap.Entropy,
		stats.MaxEntropyBits,
		entPct,
		m.snap.MaxDeviation)
}

func (m Model) writeSparklines(b *strings.Builder) {
	sparkW := m.width - 38
	if sparkW < 10 {
		sparkW = 10
	}

	b.WriteString(dimStyle.Render("  Max |deviation| → 0 : "))
	b.WriteString(devSparkStyle.Render(sparkline(m.snap.MaxDevHistory, sparkW)))
	b.WriteByte('\n')

	b.WriteString(dimStyle.Render("  Entropy → 3.3219    : "))
	b.WriteString(entropySparkStyle.Render(sparkline(m.snap.EntropyHistory, sparkW)))
	b.WriteByte('\n')

	b.WriteString(dimStyle.Render("  χ² → 0              : "))
	b.WriteString(chiSparkStyle.Render(sparkline(m.snap.ChiSqHistory, sparkW)))
	b.WriteByte('\n')
}
