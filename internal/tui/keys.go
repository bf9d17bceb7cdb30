package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/colonyops/fleetcheck/internal/core/styles"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextKind  key.Binding
	PrevKind  key.Binding
	Toggle    key.Binding
	SelectAll key.Binding
	Submit    key.Binding
	Refresh   key.Binding
	Dismiss   key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextKind:  key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next list")),
		PrevKind:  key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "prev list")),
		Toggle:    key.NewBinding(key.WithKeys("space", "x"), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "check in")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.SelectAll, k.Submit, k.NextKind, k.Refresh, k.Quit}
}

// helpView renders bindings as "key action" pairs.
func helpView(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styles.HelpStyle.Render(strings.Join(parts, " • "))
}
