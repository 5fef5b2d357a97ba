package model

import "time"

// QuestFolderName is the reserved folder that holds quest entries.
const QuestFolderName = "_questlog_quests"

// Folder is a named container for journal entries.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
