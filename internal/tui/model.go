// Package tui implements the interactive check-in screen.
package tui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/eventbus"
	"github.com/colonyops/fleetcheck/internal/core/notify"
	"github.com/colonyops/fleetcheck/internal/core/styles"
	"github.com/colonyops/fleetcheck/internal/fleet"
)

const idleWaitTimeout = 2 * time.Minute

// Deps are the services the TUI drives.
type Deps struct {
	Session     *fleet.Session
	Bus         *eventbus.EventBus
	DefaultKind checkin.Kind
}

// Messages.
type (
	itemsLoadedMsg struct {
		kind checkin.Kind
		err  error
	}
	batchDoneMsg struct {
		kind   checkin.Kind
		result checkin.Result
	}
	idleMsg struct {
		kind checkin.Kind
	}
	drainNotificationsMsg struct{}
)

// Model is the bubbletea model for the check-in screen.
type Model struct {
	ctx     context.Context
	session *fleet.Session
	kinds   []checkin.Kind
	active  int
	cursors map[checkin.Kind]int
	loaded  map[checkin.Kind]bool

	keys    keyMap
	spinner spinner.Model
	buffer  *NotificationBuffer
	toasts  *toastStack

	width  int
	height int
}

// New builds the model. Bus subscriptions feed toasts and redraws.
func New(ctx context.Context, deps Deps) Model {
	kinds := make([]checkin.Kind, 0, len(checkin.Kinds))
	for _, k := range checkin.Kinds {
		if deps.Session.Controller(k) != nil {
			kinds = append(kinds, k)
		}
	}

	active := 0
	for i, k := range kinds {
		if k == deps.DefaultKind {
			active = i
		}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	m := Model{
		ctx:     ctx,
		session: deps.Session,
		kinds:   kinds,
		active:  active,
		cursors: make(map[checkin.Kind]int, len(kinds)),
		loaded:  make(map[checkin.Kind]bool, len(kinds)),
		keys:    defaultKeyMap(),
		spinner: s,
		buffer:  NewNotificationBuffer(),
		toasts:  &toastStack{},
	}

	if deps.Bus != nil {
		buf := m.buffer
		deps.Bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
			buf.Push(notify.Notification{Level: p.Level, Message: p.Message})
		})
		deps.Bus.SubscribeItemsReplaced(func(eventbus.ItemsReplacedPayload) { buf.Touch() })
		deps.Bus.SubscribeBusyChanged(func(eventbus.BusyChangedPayload) { buf.Touch() })
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.buffer.WaitForSignal(m.ctx)}
	for _, k := range m.kinds {
		cmds = append(cmds, m.loadCmd(k))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case itemsLoadedMsg:
		m.loaded[msg.kind] = true
		m.clampCursor(msg.kind)
		return m, nil

	case batchDoneMsg:
		if _, busy := msg.result.(checkin.AlreadyInProgress); busy {
			m.buffer.Push(notify.Notification{Level: notify.LevelWarning, Message: msg.result.Message()})
			return m, nil
		}
		return m, m.waitIdleCmd(msg.kind)

	case idleMsg:
		m.clampCursor(msg.kind)
		return m, nil

	case drainNotificationsMsg:
		for _, n := range m.buffer.Drain() {
			m.toasts.push(n)
		}
		return m, tea.Batch(m.buffer.WaitForSignal(m.ctx), m.toasts.startTicking())

	case toastTickMsg:
		return m, m.toasts.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	ctrl := m.controller()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.dismiss()

	case key.Matches(msg, m.keys.NextKind):
		if len(m.kinds) > 0 {
			m.active = (m.active + 1) % len(m.kinds)
		}

	case key.Matches(msg, m.keys.PrevKind):
		if len(m.kinds) > 0 {
			m.active = (m.active - 1 + len(m.kinds)) % len(m.kinds)
		}

	case key.Matches(msg, m.keys.Up):
		if c := m.cursors[m.kind()]; c > 0 {
			m.cursors[m.kind()] = c - 1
		}

	case key.Matches(msg, m.keys.Down):
		if ctrl != nil && m.cursors[m.kind()] < len(ctrl.Items())-1 {
			m.cursors[m.kind()]++
		}

	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.currentItem(); ok {
			ctrl.Toggle(it.ID)
		}

	case key.Matches(msg, m.keys.SelectAll):
		if ctrl != nil {
			ctrl.SetAllSelected(!ctrl.Snapshot().AllSelected)
		}

	case key.Matches(msg, m.keys.Submit):
		if ctrl != nil {
			return m, m.submitCmd(ctrl)
		}

	case key.Matches(msg, m.keys.Refresh):
		if ctrl != nil && !ctrl.Busy() {
			return m, m.loadCmd(ctrl.Kind())
		}
	}

	return m, nil
}

func (m Model) kind() checkin.Kind {
	if len(m.kinds) == 0 {
		return ""
	}
	return m.kinds[m.active]
}

func (m Model) controller() *fleet.Controller {
	if len(m.kinds) == 0 {
		return nil
	}
	return m.session.Controller(m.kind())
}

func (m Model) currentItem() (checkin.Item, bool) {
	ctrl := m.controller()
	if ctrl == nil {
		return checkin.Item{}, false
	}
	items := ctrl.Items()
	c := m.cursors[m.kind()]
	if c < 0 || c >= len(items) {
		return checkin.Item{}, false
	}
	return items[c], true
}

func (m Model) clampCursor(kind checkin.Kind) {
	ctrl := m.session.Controller(kind)
	if ctrl == nil {
		return
	}
	n := len(ctrl.Items())
	if m.cursors[kind] >= n {
		m.cursors[kind] = max(n-1, 0)
	}
}

func (m Model) loadCmd(kind checkin.Kind) tea.Cmd {
	ctrl := m.session.Controller(kind)
	ctx := m.ctx
	return func() tea.Msg {
		return itemsLoadedMsg{kind: kind, err: ctrl.Load(ctx)}
	}
}

func (m Model) submitCmd(ctrl *fleet.Controller) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return batchDoneMsg{kind: ctrl.Kind(), result: ctrl.Submit(ctx)}
	}
}

// waitIdleCmd reports when the post-batch refresh has finished.
func (m Model) waitIdleCmd(kind checkin.Kind) tea.Cmd {
	ctrl := m.session.Controller(kind)
	ctx := m.ctx
	return func() tea.Msg {
		waitCtx, cancel := context.WithTimeout(ctx, idleWaitTimeout)
		defer cancel()
		_ = ctrl.WaitIdle(waitCtx)
		return idleMsg{kind: kind}
	}
}
