// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette is the palette the styles below were built from.
var CurrentPalette Palette

var (
	// CLI output.
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	HeaderStyle  lipgloss.Style

	// Check-in screen.
	TitleStyle       lipgloss.Style
	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style
	CursorRowStyle   lipgloss.Style
	ItemStyle        lipgloss.Style
	IneligibleStyle  lipgloss.Style
	CheckedStyle     lipgloss.Style
	StatusBarStyle   lipgloss.Style
	HelpStyle        lipgloss.Style
	SpinnerStyle     lipgloss.Style

	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
)

// SetTheme makes p the active palette and rebuilds every style from it.
// It is not safe to call while a program is rendering.
func SetTheme(p Palette) {
	CurrentPalette = p
	text := lipgloss.NewStyle().Foreground

	SuccessStyle = text(p.Success)
	WarningStyle = text(p.Warning)
	ErrorStyle = text(p.Error).Bold(true)
	MutedStyle = text(p.Muted)
	HeaderStyle = text(p.Primary).Bold(true)

	TitleStyle = text(p.Background).Background(p.Primary).Bold(true).Padding(0, 1)
	TabActiveStyle = text(p.Primary).Bold(true).Underline(true).Padding(0, 1)
	TabInactiveStyle = text(p.Muted).Padding(0, 1)
	CursorRowStyle = text(p.Foreground).Background(Blend(p.Surface, p.Primary, 0.15))
	ItemStyle = text(p.Foreground)
	IneligibleStyle = MutedStyle.Italic(true)
	CheckedStyle = SuccessStyle.Bold(true)
	StatusBarStyle = text(p.Foreground).Background(p.Surface).Padding(0, 1)
	HelpStyle = MutedStyle
	SpinnerStyle = text(p.Secondary)

	boxed := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	ToastInfoStyle = boxed.BorderForeground(p.Primary).Foreground(p.Foreground)
	ToastWarningStyle = boxed.BorderForeground(p.Warning).Foreground(p.Warning)
	ToastErrorStyle = boxed.BorderForeground(p.Error).Foreground(p.Error)
}

// nolint:gochecknoinits // styles must be usable before config is loaded.
func init() {
	SetTheme(themes[DefaultTheme])
}
