package model

import "time"

// NotificationKind identifies what a notification asks receivers to do.
type NotificationKind string

const (
	NotifyRefreshQuest NotificationKind = "refresh_quest"
	NotifyRefreshAll   NotificationKind = "refresh_all"
)

// Notification is a broadcast refresh signal written by one client
// and picked up by the others.
type Notification struct {
	// ID increases monotonically; receivers poll for IDs above their cursor.
	ID int64 `json:"id" db:"id"`

	// ClientID identifies the sending client so it can skip its own rows.
	ClientID string `json:"client_id" db:"client_id"`

	Kind    NotificationKind `json:"kind" db:"kind"`
	QuestID string           `json:"quest_id" db:"quest_id"`

	// Focus asks receivers to bring the quest preview to the front.
	Focus bool `json:"focus" db:"focus"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
