package notify_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/notify"
	"github.com/nhle/questlog/tests/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func next(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestPoller_DeliversOtherClientsRows(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	self := notify.NewBroadcaster(s, "client-a", zap.NewNop())
	other := notify.NewBroadcaster(s, "client-b", zap.NewNop())

	// Rows written before Start are history and not replayed.
	other.RefreshQuest(ctx, "old", true)

	p := notify.NewPoller(s, "client-a", 10*time.Millisecond, zap.NewNop())
	cmd := p.Start(ctx)
	require.NotNil(t, cmd)

	self.RefreshQuest(ctx, "mine", false)
	other.RefreshQuest(ctx, "q1", false)
	other.RefreshAll(ctx)
	p.Trigger()

	msg := next(t, cmd)
	assert.Equal(t, notify.RefreshMsg{QuestID: "q1"}, msg)

	msg = next(t, p.WaitForNext())
	assert.Equal(t, notify.RefreshMsg{All: true}, msg)

	p.Stop()
	assert.Nil(t, next(t, p.WaitForNext()))
}

func TestPoller_StartTwiceAndStopIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	p := notify.NewPoller(s, "c", time.Hour, zap.NewNop())

	require.NotNil(t, p.Start(context.Background()))
	assert.Nil(t, p.Start(context.Background()))

	p.Stop()
	p.Stop()
}

func TestBroadcaster_FocusFlag(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	b := notify.NewBroadcaster(s, "sender", zap.NewNop())

	b.RefreshQuest(ctx, "q1", true)

	rows, err := s.GetNotificationsAfter(ctx, 0, "someone-else")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Focus)
	assert.Equal(t, "sender", rows[0].ClientID)

	rows, err = s.GetNotificationsAfter(ctx, 0, "sender")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
