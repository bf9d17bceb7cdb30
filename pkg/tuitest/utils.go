// Package tuitest provides testing utilities for TUI components.
package tuitest

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape codes and trailing whitespace so rendered
// views can be compared as plain text.
func StripANSI(s string) string {
	s = ansi.Strip(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Text creates a key press for a printable key such as "a" or "q".
func Text(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: -1, Text: s}
}

// Space creates a space bar key press.
func Space() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
}

// Tab creates a tab key press.
func Tab() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyTab}
}

// Enter creates an enter key press.
func Enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

// Down creates a down arrow key press.
func Down() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyDown}
}
