package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// The TUI must stay readable on light and dark terminals, so colors are adaptive.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg   lipgloss.TerminalColor = ac("255", "235")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorError      lipgloss.TerminalColor = ac("160", "203")
	colorDone       lipgloss.TerminalColor = ac("28", "114")
)

func styleMuted() lipgloss.Style { return lipgloss.NewStyle().Foreground(colorMuted) }

func styleTabActive() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorAccentFg).Background(colorAccent)
}

func styleTab() lipgloss.Style { return lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted) }

func styleTicker() lipgloss.Style { return lipgloss.NewStyle().Italic(true) }

func styleError() lipgloss.Style { return lipgloss.NewStyle().Bold(true).Foreground(colorError) }

func styleHeading() lipgloss.Style { return lipgloss.NewStyle().Bold(true) }

// swatch renders a record's color as a small block; invalid colors render as a space.
func swatch(hex string) string {
	if hex == "" {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}
