package model

import (
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Profile is a published self-assessment. Ratings are flat columns, as the
// backend table stores them.
type Profile struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Note               *string   `json:"note"`
	Cryptography       float64   `json:"cryptography"`
	DistributedSystems float64   `json:"distributedSystems"`
	Economics          float64   `json:"economics"`
	Coding             float64   `json:"coding"`
	Writing            float64   `json:"writing"`
	Community          float64   `json:"community"`
	Published          bool      `json:"published"`
	CreatedAt          time.Time `json:"created_at"`
}

// Scores returns the profile ratings as a score map.
func (p Profile) Scores() category.ScoreMap {
	return category.ScoreMap{
		category.Cryptography:       p.Cryptography,
		category.DistributedSystems: p.DistributedSystems,
		category.Economics:          p.Economics,
		category.Coding:             p.Coding,
		category.Writing:            p.Writing,
		category.Community:          p.Community,
	}
}

// SetScores copies m into the rating columns. Missing categories become 0.
func (p *Profile) SetScores(m category.ScoreMap) {
	p.Cryptography = m[category.Cryptography]
	p.DistributedSystems = m[category.DistributedSystems]
	p.Economics = m[category.Economics]
	p.Coding = m[category.Coding]
	p.Writing = m[category.Writing]
	p.Community = m[category.Community]
}

// Submission is what a user sends to publish a profile.
type Submission struct {
	Name   string            `json:"name"`
	Note   string            `json:"note,omitempty"`
	Scores category.ScoreMap `json:"scores"`
}
