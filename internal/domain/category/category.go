// Package category defines the closed set of skill categories and the score map keyed by them.
package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Scale bounds. Every rating in the system lives on a 0-10 scale.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Sentinel kinds for category errors.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrOutOfRange      = errors.New("score out of range")
)

// Category identifies one of the fixed skill dimensions.
type Category string

// The six rated categories, in canonical order.
const (
	Cryptography       Category = "cryptography"
	DistributedSystems Category = "distributedSystems"
	Economics          Category = "economics"
	Coding             Category = "coding"
	Writing            Category = "writing"
	Community          Category = "community"
)

var all = []Category{Cryptography, DistributedSystems, Economics, Coding, Writing, Community}

var labels = map[Category]string{
	Cryptography:       "Cryptography",
	DistributedSystems: "Distributed Systems",
	Economics:          "Economics",
	Coding:             "Coding",
	Writing:            "Writing",
	Community:          "Community",
}

// All returns the categories in canonical order. The slice is a copy.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Labels returns display labels in canonical order.
func Labels() []string {
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = labels[c]
	}
	return out
}

// Parse returns the category for a wire name.
func Parse(name string) (Category, error) {
	c := Category(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// Label returns the human readable name.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Index returns the canonical position of c, or len(All()) for unknown values.
func (c Category) Index() int {
	for i, x := range all {
		if x == c {
			return i
		}
	}
	return len(all)
}

func (c Category) String() string { return string(c) }

// ValidScore reports whether v is a finite rating inside the scale.
func ValidScore(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= MinScore && v <= MaxScore
}

// Clamp forces v into the scale. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// CheckScore validates a category/value pair.
func CheckScore(c Category, v float64) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	if !ValidScore(v) {
		return fmt.Errorf("%w: %v not in [%v,%v]", ErrOutOfRange, v, MinScore, MaxScore)
	}
	return nil
}

// ScoreMap maps categories to ratings. A missing key means "not rated".
type ScoreMap map[Category]float64

// Get returns the rating for c, or 0 when absent.
func (m ScoreMap) Get(c Category) float64 {
	return m[c]
}

// Values returns ratings in canonical order with 0 for missing entries.
func (m ScoreMap) Values() []float64 {
	out := make([]float64, len(all))
	for i, c := range all {
		out[i] = m[c]
	}
	return out
}

// Clone returns an independent copy.
func (m ScoreMap) Clone() ScoreMap {
	out := make(ScoreMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the present categories in canonical order.
func (m ScoreMap) Keys() []Category {
	keys := make([]Category, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Index() < keys[j].Index() })
	return keys
}

// Validate checks every entry against the category set and the scale.
func (m ScoreMap) Validate() error {
	for c, v := range m {
		if err := CheckScore(c, v); err != nil {
			return err
		}
	}
	return nil
}

// FromRaw converts a loosely typed map into a ScoreMap. It returns ok=false when any
// key is unknown or any value is outside the scale; the result is then empty.
func FromRaw(raw map[string]float64) (ScoreMap, bool) {
	out := make(ScoreMap, len(raw))
	for k, v := range raw {
		c := Category(k)
		if CheckScore(c, v) != nil {
			return ScoreMap{}, false
		}
		out[c] = v
	}
	return out, true
}

// Raw returns the map keyed by wire names.
func (m ScoreMap) Raw() map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// UnmarshalJSON drops unknown keys and out-of-range values instead of failing.
// Persisted data written by older versions may carry display labels as keys.
func (m *ScoreMap) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(ScoreMap, len(raw))
	for k, v := range raw {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		c := Category(k)
		if CheckScore(c, f) == nil {
			out[c] = f
		}
	}
	*m = out
	return nil
}
