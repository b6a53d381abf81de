// Package scoring computes the weighted 0-100 comparison score from a ScoreMap.
package scoring

import (
	"math"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Default scoring configuration constants.
const (
	maxScoreValue = 100
)

// DefaultWeights are the per-category weights. They sum to 100.
var DefaultWeights = map[category.Category]float64{
	category.Cryptography:       20,
	category.DistributedSystems: 18,
	category.Economics:          15,
	category.Coding:             17,
	category.Writing:            15,
	category.Community:          15,
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeightsFromConfig overrides weights from a configuration map keyed by wire names.
// Unknown categories and non-positive weights are ignored.
func WithWeightsFromConfig(weights map[string]float64) Option {
	return func(s *Scorer) {
		for name, w := range weights {
			c, err := category.Parse(name)
			if err != nil || w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
				continue
			}
			s.weights[c] = w
		}
	}
}

// Scorer holds the weight table. The zero value is not usable; use New.
type Scorer struct {
	weights map[category.Category]float64
}

// New creates a scorer with the default weights and applies opts.
func New(opts ...Option) *Scorer {
	s := &Scorer{weights: make(map[category.Category]float64, len(DefaultWeights))}
	for c, w := range DefaultWeights {
		s.weights[c] = w
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns a copy of the weight table.
func (s *Scorer) Weights() map[category.Category]float64 {
	out := make(map[category.Category]float64, len(s.weights))
	for c, w := range s.weights {
		out[c] = w
	}
	return out
}

// Score returns the comparison score in [0,100].
//
// A category missing from m contributes nothing to the numerator while its weight
// still counts in the denominator, so a half-rated profile cannot score 100.
func (s *Scorer) Score(m category.ScoreMap) int {
	var total, weightSum float64
	for _, c := range category.All() {
		w := s.weights[c]
		weightSum += w
		total += (category.Clamp(m[c]) / category.MaxScore) * w
	}
	if weightSum == 0 {
		return 0
	}
	out := int(math.Round(total * maxScoreValue / weightSum))
	if out < 0 {
		return 0
	}
	if out > maxScoreValue {
		return maxScoreValue
	}
	return out
}

var defaultScorer = New()

// Score computes the comparison score with the default weights.
func Score(m category.ScoreMap) int {
	return defaultScorer.Score(m)
}

// Average returns the plain mean of the six ratings rounded to two decimals,
// counting missing categories as 0.
func Average(m category.ScoreMap) float64 {
	vals := m.Values()
	var sum float64
	for _, v := range vals {
		sum += category.Clamp(v)
	}
	return math.Round(sum/float64(len(vals))*100) / 100
}
