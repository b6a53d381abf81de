package service

import (
	"context"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

func (s *Service) requireCloud() error {
	if s.cloud == nil {
		return remote.ErrNotConfigured
	}
	return nil
}

// Authenticate asks the backend to e-mail a sign-in link.
func (s *Service) Authenticate(ctx context.Context, email, redirectTo string) error {
	if err := s.requireCloud(); err != nil {
		return err
	}
	return s.cloud.Authenticate(ctx, email, redirectTo)
}

// Session returns the signed-in user carried on ctx.
func (s *Service) Session(ctx context.Context) (*remote.Session, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	return s.cloud.Session(ctx)
}

// PushScores saves the local ratings to the cloud.
func (s *Service) PushScores(ctx context.Context) (category.ScoreMap, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	m := s.store.Get(ctx)
	if err := s.cloud.SaveScores(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// PullScores replaces the local ratings with the cloud copy. Local state is left
// untouched when the read fails.
func (s *Service) PullScores(ctx context.Context) (category.ScoreMap, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	m, err := s.cloud.LoadScores(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// History lists the user's recent rating events.
func (s *Service) History(ctx context.Context, limit int) ([]model.ScoreEvent, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	return s.cloud.History(ctx, limit)
}

// CategoryAverages returns anonymous per-category averages.
func (s *Service) CategoryAverages(ctx context.Context) ([]model.CategoryAverage, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	return s.cloud.CategoryAverages(ctx)
}

// PublishedProfiles lists public profiles.
func (s *Service) PublishedProfiles(ctx context.Context) ([]model.Profile, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	return s.cloud.PublishedProfiles(ctx)
}

// Profile returns one public profile.
func (s *Service) Profile(ctx context.Context, id string) (*model.Profile, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	return s.cloud.Profile(ctx, id)
}

// PublishProfile publishes sub and ranks it right away.
func (s *Service) PublishProfile(ctx context.Context, sub model.Submission) (*model.Profile, error) {
	if err := s.requireCloud(); err != nil {
		return nil, err
	}
	p, err := s.cloud.PublishProfile(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.leaderboard.Upsert(ctx, p.ID, p.Name, s.Score(p.Scores())); err != nil {
		s.logger.Warn(ctx, "rank new profile", logger.String("profile_id", p.ID), logger.Error(err))
	}
	return p, nil
}

