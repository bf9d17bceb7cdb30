package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/fleetcheck/internal/core/notify"
)

func TestNotificationBuffer_DrainEmpty(t *testing.T) {
	assert.Nil(t, NewNotificationBuffer().Drain())
}

func TestNotificationBuffer_PushDrainKeepsOrder(t *testing.T) {
	b := NewNotificationBuffer()
	b.Push(notify.Notification{Level: notify.LevelInfo, Message: "Checked in 2 items"})
	b.Push(notify.Notification{Level: notify.LevelError, Message: "No connection"})

	items := b.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, "Checked in 2 items", items[0].Message)
	assert.Equal(t, "No connection", items[1].Message)
	assert.False(t, items[0].CreatedAt.IsZero(), "push stamps the time")
	assert.Nil(t, b.Drain())
}

func TestNotificationBuffer_FoldsRepeats(t *testing.T) {
	b := NewNotificationBuffer()
	for range 3 {
		b.Push(notify.Notification{Level: notify.LevelError, Message: "No connection"})
	}
	b.Push(notify.Notification{Level: notify.LevelWarning, Message: "No connection"})

	items := b.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, notify.LevelError, items[0].Level)
	assert.Equal(t, notify.LevelWarning, items[1].Level)
}

func TestNotificationBuffer_DropsOldestOverCap(t *testing.T) {
	b := NewNotificationBuffer()
	for i := range maxPendingNotifications + 5 {
		b.Push(notify.Notification{Level: notify.LevelInfo, Message: fmt.Sprintf("n%d", i)})
	}

	items := b.Drain()
	require.Len(t, items, maxPendingNotifications)
	assert.Equal(t, "n5", items[0].Message)
}

func TestNotificationBuffer_TouchSignalsWithoutNotification(t *testing.T) {
	b := NewNotificationBuffer()
	b.Touch()
	b.Touch()

	msg := b.WaitForSignal(context.Background())()
	_, ok := msg.(drainNotificationsMsg)
	require.True(t, ok)
	assert.Nil(t, b.Drain())
}

func TestNotificationBuffer_WaitEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, NewNotificationBuffer().WaitForSignal(ctx)())
}

func TestNotificationBuffer_ConcurrentPush(t *testing.T) {
	b := NewNotificationBuffer()
	const count = maxPendingNotifications

	var wg sync.WaitGroup
	for i := range count {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Push(notify.Notification{Level: notify.LevelInfo, Message: fmt.Sprintf("n%d", i)})
		}(i)
	}
	wg.Wait()

	assert.Len(t, b.Drain(), count)
}
