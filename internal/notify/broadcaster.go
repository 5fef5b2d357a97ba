// Package notify carries refresh signals between clients sharing a journal.
package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
)

// keepRows is how many notification rows survive a prune.
const keepRows = 500

// pruneEvery is the number of sends between prunes.
const pruneEvery = 50

// NewClientID returns a fresh client identifier.
func NewClientID() string {
	return uuid.New().String()
}

// Broadcaster writes refresh signals tagged with its client ID.
// Delivery is fire-and-forget: failures are logged, not returned.
type Broadcaster struct {
	store    store.Store
	clientID string
	logger   *zap.Logger
	sent     int
}

// NewBroadcaster returns a Broadcaster for clientID.
func NewBroadcaster(s store.Store, clientID string, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{store: s, clientID: clientID, logger: logger}
}

// ClientID returns the sender identifier.
func (b *Broadcaster) ClientID() string {
	return b.clientID
}

// RefreshQuest asks other clients to reload one quest. Focus asks them to
// bring its preview to the front.
func (b *Broadcaster) RefreshQuest(ctx context.Context, questID string, focus bool) {
	b.send(ctx, model.Notification{
		Kind:    model.NotifyRefreshQuest,
		QuestID: questID,
		Focus:   focus,
	})
}

// RefreshAll asks other clients to reload every quest.
func (b *Broadcaster) RefreshAll(ctx context.Context) {
	b.send(ctx, model.Notification{Kind: model.NotifyRefreshAll})
}

func (b *Broadcaster) send(ctx context.Context, n model.Notification) {
	n.ClientID = b.clientID
	id, err := b.store.CreateNotification(ctx, n)
	if err != nil {
		b.logger.Warn("broadcasting refresh",
			zap.String("kind", string(n.Kind)),
			zap.String("quest", n.QuestID),
			zap.Error(err))
		return
	}
	b.logger.Debug("refresh broadcast",
		zap.Int64("id", id),
		zap.String("kind", string(n.Kind)),
		zap.String("quest", n.QuestID))

	b.sent++
	if b.sent%pruneEvery == 0 {
		if err := b.store.PruneNotifications(ctx, keepRows); err != nil {
			b.logger.Warn("pruning notifications", zap.Error(err))
		}
	}
}
