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

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	uniformStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skewedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	devSparkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	entropySparkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	chiSparkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// barStyles colors the frequency bar of each digit 0-9.
var barStyles = [10]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("1")),  // red
	lipgloss.NewStyle().Foreground(lipgloss.Color("2")),  // green
	lipgloss.NewStyle().Foreground(lipgloss.Color("3")),  // yellow
	lipgloss.NewStyle().Foreground(lipgloss.Color("4")),  // blue
	lipgloss.NewStyle().Foreground(lipgloss.Color("5")),  // magenta
	lipgloss.NewStyle().Foreground(lipgloss.Color("6")),  // cyan
	lipgloss.NewStyle().Foreground(lipgloss.Color("7")),  // white
	lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // bright red
	lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // bright green
	lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // bright yellow
}
