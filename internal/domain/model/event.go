// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// ScoreChange is one local rating update queued for mirroring to the cloud.
type ScoreChange struct {
	EventID     string // unique id for idempotency
	AccessToken string // session token of the user who made the change
	Category    category.Category
	Score       float64
	Note        string
	Scores      category.ScoreMap // full local map after the change
	TS          time.Time
}

// ScoreEvent is one row of the user's rating history.
type ScoreEvent struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Score     float64   `json:"score"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryAverage aggregates all users' ratings of one category.
type CategoryAverage struct {
	Category string  `json:"category"`
	AvgScore float64 `json:"avg_score"`
	Samples  int     `json:"samples"`
}
