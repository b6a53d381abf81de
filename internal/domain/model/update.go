package model

import "github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"

// Sync outcomes of a score update.
const (
	SyncLocal     = "local"     // stored locally only
	SyncQueued    = "queued"    // queued for the cloud
	SyncDuplicate = "duplicate" // event id already handled
	SyncDropped   = "dropped"   // queue full, cloud copy skipped
)

// ScoreUpdate describes a stored rating update.
type ScoreUpdate struct {
	Scores  category.ScoreMap `json:"scores"`
	Score   int               `json:"score"`
	Sync    string            `json:"sync"`
	EventID string            `json:"event_id,omitempty"`
}

// Target is one profile placed on a comparison.
type Target struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Scores category.ScoreMap `json:"scores"`
	Score  int               `json:"score"`
}
