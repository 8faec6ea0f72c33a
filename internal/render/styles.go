// Package render formats screening outcomes and result listings for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

var (
	colorRed   = lipgloss.Color("#EF4444")
	colorGreen = lipgloss.Color("#10B981")
	colorCyan  = lipgloss.Color("#00FFFF")
	colorGray  = lipgloss.Color("#666666")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	positiveStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	negativeStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	headerStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)
