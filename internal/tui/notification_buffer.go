package tui

import (
	"context"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/fleetcheck/internal/core/notify"
)

// maxPendingNotifications caps the buffer between draws; the oldest
// entries are discarded first.
const maxPendingNotifications = 20

// NotificationBuffer carries bus notifications from publisher goroutines to
// the update loop. A repeat of the newest pending notification is folded
// into it, so a source failing on every refresh yields one toast.
type NotificationBuffer struct {
	mu      sync.Mutex
	pending []notify.Notification
	signal  chan struct{}
}

func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{signal: make(chan struct{}, 1)}
}

// Push queues n and wakes the update loop.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	if last := len(b.pending) - 1; last >= 0 &&
		b.pending[last].Level == n.Level && b.pending[last].Message == n.Message {
		b.pending[last].CreatedAt = n.CreatedAt
	} else {
		b.pending = append(b.pending, n)
		if over := len(b.pending) - maxPendingNotifications; over > 0 {
			b.pending = append(b.pending[:0], b.pending[over:]...)
		}
	}
	b.mu.Unlock()

	b.Touch()
}

// Touch wakes the update loop without queueing anything, so state changed
// in the background gets redrawn.
func (b *NotificationBuffer) Touch() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns and clears the pending notifications, oldest first.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	return out
}

// WaitForSignal returns a command that resolves to drainNotificationsMsg on
// the next Push or Touch, or to nil once ctx is done.
func (b *NotificationBuffer) WaitForSignal(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return drainNotificationsMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
