// Package types holds the row shapes shared by the leaderboard, the API and the load tool.
package types

// Entry is one ranked profile. Profiles with equal scores share a rank.
type Entry struct {
	Rank      int    `json:"rank"`
	ProfileID string `json:"profile_id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
}
