// Package benchmark holds the fixed historical reference profiles and their requirement rows.
package benchmark

import (
	"errors"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Sentinel kinds for benchmark errors.
var (
	ErrUnknownBenchmark = errors.New("unknown benchmark")
)

// IDPrefix marks identifiers of built-in benchmark profiles.
const IDPrefix = "bm-"

// Profile is a named, immutable reference ScoreMap.
type Profile struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Scores category.ScoreMap `json:"scores"`
}

func profile(id, name string, crypto, dist, econ, coding, writing, community float64) Profile {
	return Profile{
		ID:   id,
		Name: name,
		Scores: category.ScoreMap{
			category.Cryptography:       crypto,
			category.DistributedSystems: dist,
			category.Economics:          econ,
			category.Coding:             coding,
			category.Writing:            writing,
			category.Community:          community,
		},
	}
}

var profiles = []Profile{
	profile("bm-satoshi", "Satoshi", 10, 10, 10, 10, 10, 7),
	profile("bm-hal", "Hal Finney", 9, 8, 7, 10, 8, 9),
	profile("bm-wei", "Wei Dai", 8, 7, 7, 6, 8, 7),
	profile("bm-gavin", "Gavin Andresen", 6, 7, 7, 7, 6, 9),
	profile("bm-craig", `Craig "Wrong" Wright`, 0, 0, 1, 0, 1, 3),
}

// All returns copies of the benchmark profiles in display order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = Profile{ID: p.ID, Name: p.Name, Scores: p.Scores.Clone()}
	}
	return out
}

// IDs returns the benchmark identifiers in display order.
func IDs() []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.ID
	}
	return out
}

// ByID looks up a benchmark by identifier.
func ByID(id string) (Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return Profile{ID: p.ID, Name: p.Name, Scores: p.Scores.Clone()}, true
		}
	}
	return Profile{}, false
}

// ByName looks up a benchmark by display name.
func ByName(name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return Profile{ID: p.ID, Name: p.Name, Scores: p.Scores.Clone()}, true
		}
	}
	return Profile{}, false
}
