package service

import (
	"context"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/types"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// TopN returns the n best ranked profiles.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the position of one profile.
func (s *Service) Rank(ctx context.Context, id string) (types.Entry, error) {
	return s.leaderboard.Rank(ctx, id)
}

// refreshLeaderboard re-ranks the benchmarks and every published profile. When
// the cloud read fails the benchmarks are still ranked.
func (s *Service) refreshLeaderboard(ctx context.Context) {
	start := time.Now()

	rows := make([]types.Entry, 0, 16)
	for _, b := range benchmark.All() {
		rows = append(rows, types.Entry{ProfileID: b.ID, Name: b.Name, Score: s.scorer.Score(b.Scores)})
	}
	if s.cloud != nil {
		profiles, err := s.cloud.PublishedProfiles(ctx)
		if err != nil {
			s.logger.Warn(ctx, "leaderboard refresh could not read profiles", logger.Error(err))
		}
		for _, p := range profiles {
			rows = append(rows, types.Entry{ProfileID: p.ID, Name: p.Name, Score: s.scorer.Score(p.Scores())})
		}
	}

	if err := s.leaderboard.Replace(ctx, rows); err != nil {
		s.logger.Error(ctx, "leaderboard refresh failed", logger.Error(err))
		return
	}
	metrics.RecordLeaderboardUpdate(float64(time.Since(start).Milliseconds()))
}

func (s *Service) leaderboardLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.refreshLeaderboard(ctx)
		}
	}
}
