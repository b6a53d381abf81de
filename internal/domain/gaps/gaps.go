// Package gaps compares a user's ratings with benchmark requirement rows.
package gaps

import (
	"sort"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Requirement is one target threshold for one metric of one benchmark.
type Requirement struct {
	ID        string            `json:"id" yaml:"id"`
	Benchmark string            `json:"benchmark" yaml:"benchmark"`
	Metric    category.Category `json:"metric" yaml:"metric"`
	Target    float64           `json:"target" yaml:"target"`
	Detail    string            `json:"detail" yaml:"detail"`
	Evidence  *string           `json:"evidence" yaml:"evidence"`
}

// Item is a requirement the user has not reached yet.
type Item struct {
	ID            string            `json:"id"`
	Metric        category.Category `json:"metric"`
	UserHas       float64           `json:"userHas"`
	NeededToReach float64           `json:"neededToReach"`
	Delta         float64           `json:"delta"`
	Detail        string            `json:"detail"`
	Evidence      *string           `json:"evidence"`
}

// Compute returns the requirements whose target exceeds the user's rating, largest
// delta first. Ties fall back to canonical category order, then requirement ID.
// Rows naming an unknown metric are skipped. The result is never nil.
func Compute(user category.ScoreMap, reqs []Requirement) []Item {
	out := make([]Item, 0, len(reqs))
	for _, r := range reqs {
		if !r.Metric.Valid() {
			continue
		}
		has := user[r.Metric]
		if has >= r.Target {
			continue
		}
		out = append(out, Item{
			ID:            r.ID,
			Metric:        r.Metric,
			UserHas:       has,
			NeededToReach: r.Target,
			Delta:         r.Target - has,
			Detail:        r.Detail,
			Evidence:      r.Evidence,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Delta != b.Delta {
			return a.Delta > b.Delta
		}
		if ai, bi := a.Metric.Index(), b.Metric.Index(); ai != bi {
			return ai < bi
		}
		return a.ID < b.ID
	})
	return out
}

// ForBenchmark filters rows belonging to one benchmark name.
func ForBenchmark(reqs []Requirement, benchmark string) []Requirement {
	out := make([]Requirement, 0, len(reqs))
	for _, r := range reqs {
		if r.Benchmark == benchmark {
			out = append(out, r)
		}
	}
	return out
}

// TotalDelta sums the deltas of a gap list.
func TotalDelta(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Delta
	}
	return sum
}
