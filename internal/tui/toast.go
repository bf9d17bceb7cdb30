package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/fleetcheck/internal/core/notify"
	"github.com/colonyops/fleetcheck/internal/core/styles"
)

const (
	maxToasts     = 3
	toastInterval = 100 * time.Millisecond
	toastWidth    = 44
)

// toastLifetime is how long a toast of each level stays up. Errors linger
// so a failed item is not missed while the driver looks away.
var toastLifetime = map[notify.Level]time.Duration{
	notify.LevelInfo:    4 * time.Second,
	notify.LevelWarning: 6 * time.Second,
	notify.LevelError:   10 * time.Second,
}

type toastTickMsg struct{}

type toast struct {
	n    notify.Notification
	left time.Duration
}

// toastStack holds the visible notifications, newest last.
type toastStack struct {
	items   []toast
	running bool
}

func (s *toastStack) push(n notify.Notification) {
	life, ok := toastLifetime[n.Level]
	if !ok {
		life = toastLifetime[notify.LevelInfo]
	}
	s.items = append(s.items, toast{n: n, left: life})
	if over := len(s.items) - maxToasts; over > 0 {
		s.items = s.items[over:]
	}
}

// startTicking returns the tick command unless one is already scheduled.
func (s *toastStack) startTicking() tea.Cmd {
	if s.running || len(s.items) == 0 {
		return nil
	}
	s.running = true
	return nextToastTick()
}

// tick ages every toast by one interval and reschedules while any remain.
func (s *toastStack) tick() tea.Cmd {
	kept := s.items[:0]
	for _, t := range s.items {
		if t.left -= toastInterval; t.left > 0 {
			kept = append(kept, t)
		}
	}
	s.items = kept

	if len(s.items) == 0 {
		s.running = false
		return nil
	}
	return nextToastTick()
}

func nextToastTick() tea.Cmd {
	return tea.Tick(toastInterval, func(time.Time) tea.Msg { return toastTickMsg{} })
}

// dismiss drops the newest toast.
func (s *toastStack) dismiss() {
	if n := len(s.items); n > 0 {
		s.items = s.items[:n-1]
	}
}

func (s *toastStack) view() string {
	lines := make([]string, len(s.items))
	for i, t := range s.items {
		style, icon := styles.ToastInfoStyle, styles.IconNotifyInfo
		switch t.n.Level {
		case notify.LevelWarning:
			style, icon = styles.ToastWarningStyle, styles.IconNotifyWarning
		case notify.LevelError:
			style, icon = styles.ToastErrorStyle, styles.IconNotifyError
		}
		lines[i] = style.Width(toastWidth).Render(icon + " " + t.n.Message)
	}
	return strings.Join(lines, "\n")
}

// overlay draws the stack over bg, anchored bottom right.
func (s *toastStack) overlay(bg string, width, height int) string {
	if len(s.items) == 0 {
		return bg
	}
	content := s.view()
	layer := lipgloss.NewLayer(content).
		X(max(width-lipgloss.Width(content)-1, 0)).
		Y(max(height-lipgloss.Height(content)-2, 0)).
		Z(2)
	return lipgloss.NewCompositor(lipgloss.NewLayer(bg), layer).Render()
}
