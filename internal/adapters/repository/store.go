// Package repository holds the in-memory leaderboard of published profiles.
package repository

import (
	"context"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/types"
)

// Store provides read/write access to the ranking state.
type Store interface {
	// Upsert sets the comparison score of a profile, replacing any previous one.
	Upsert(ctx context.Context, profileID, name string, score int) error
	// Remove drops a profile. Removing an unknown profile returns ErrNotFound.
	Remove(ctx context.Context, profileID string) error
	// Replace swaps the whole ranking for rows in one step.
	Replace(ctx context.Context, rows []types.Entry) error

	// Rank returns the current rank and score of a profile.
	// Returns ErrNotFound if the profile is unknown.
	Rank(ctx context.Context, profileID string) (types.Entry, error)
	// TopN returns the top-N entries ordered by score desc, then id asc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	// Count returns the number of ranked profiles.
	Count(ctx context.Context) int
}
