package service

import (
	"context"
	"errors"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/cloud"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/render/radar"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

// SelfName labels the user's own series.
const SelfName = "You"

// lookup finds a benchmark or, with a cloud backend, a published profile.
func (s *Service) lookup(ctx context.Context, id string) (model.Target, bool) {
	if b, ok := benchmark.ByID(id); ok {
		return model.Target{ID: b.ID, Name: b.Name, Scores: b.Scores, Score: s.Score(b.Scores)}, true
	}
	if s.cloud == nil {
		return model.Target{}, false
	}
	p, err := s.cloud.Profile(ctx, id)
	if err != nil {
		if !errors.Is(err, cloud.ErrProfileNotFound) {
			s.logger.Warn(ctx, "compare lookup failed", logger.String("id", id), logger.Error(err))
		}
		return model.Target{}, false
	}
	m := p.Scores()
	return model.Target{ID: p.ID, Name: p.Name, Scores: m, Score: s.Score(m)}, true
}

// CompareTargets resolves identifiers to known profiles, keeping order and
// capping the list at share.MaxCompare. Unknown ids are dropped.
func (s *Service) CompareTargets(ctx context.Context, ids []string) []model.Target {
	found := make(map[string]model.Target, len(ids))
	resolved := share.ResolveIDs(ids, func(id string) bool {
		t, ok := s.lookup(ctx, id)
		if ok {
			found[id] = t
		}
		return ok
	})
	out := make([]model.Target, 0, len(resolved))
	for _, id := range resolved {
		out = append(out, found[id])
	}
	return out
}

// RadarChart places the resolved targets, and optionally the user's own
// ratings first, on one chart.
func (s *Service) RadarChart(ctx context.Context, ids []string, self bool) radar.Chart {
	series := make([]radar.Series, 0, share.MaxCompare+1)
	if self {
		series = append(series, radar.SeriesFromScores(SelfName, s.store.Get(ctx), ""))
	}
	for _, t := range s.CompareTargets(ctx, ids) {
		series = append(series, radar.SeriesFromScores(t.Name, t.Scores, ""))
	}
	return radar.ScoresChart(series...)
}
