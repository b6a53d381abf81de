package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// Scores returns the locally stored ratings.
func (s *Service) Scores(ctx context.Context) category.ScoreMap {
	return s.store.Get(ctx)
}

// SetScore stores one rating locally. With a cloud backend and a session token
// on ctx the change is also queued for the cloud; eventID makes resubmissions
// idempotent and is generated when empty. A replayed eventID changes nothing,
// locally or remotely, and reports SyncDuplicate with the current ratings.
func (s *Service) SetScore(ctx context.Context, c category.Category, v float64, note, eventID string) (model.ScoreUpdate, error) {
	token, signed := remote.AccessToken(ctx)
	syncing := s.cloud != nil && signed
	if syncing {
		if err := category.CheckScore(c, v); err != nil {
			return model.ScoreUpdate{}, err
		}
		if eventID == "" {
			eventID = uuid.NewString()
		}
		if s.deduper.SeenAndRecord(ctx, eventID) {
			metrics.RecordEventDuplicate()
			scores := s.store.Get(ctx)
			return model.ScoreUpdate{Scores: scores, Score: s.Score(scores), Sync: model.SyncDuplicate, EventID: eventID}, nil
		}
	}

	if err := s.store.Set(ctx, c, v); err != nil {
		if syncing {
			s.deduper.Unrecord(ctx, eventID)
		}
		return model.ScoreUpdate{}, err
	}
	metrics.RecordScoreUpdate(string(c))

	scores := s.store.Get(ctx)
	res := model.ScoreUpdate{Scores: scores, Score: s.Score(scores), Sync: model.SyncLocal}
	if !syncing {
		return res, nil
	}

	res.EventID = eventID
	res.Sync = s.enqueue(ctx, model.ScoreChange{
		EventID:     eventID,
		AccessToken: token,
		Category:    c,
		Score:       v,
		Note:        note,
		Scores:      scores.Clone(),
		TS:          time.Now().UTC(),
	})
	return res, nil
}

// enqueue hands a change to the workers. The event id is already recorded; it is
// forgotten again when the queue is full so the client may resubmit.
func (s *Service) enqueue(ctx context.Context, change model.ScoreChange) string { //nolint:gocritic // queued by value
	if !s.queue.Enqueue(ctx, change) {
		s.deduper.Unrecord(ctx, change.EventID)
		metrics.RecordEventDropped()
		s.logger.Warn(ctx, "cloud sync queue full, change kept locally only",
			logger.String("event_id", change.EventID),
			logger.String("category", string(change.Category)),
		)
		return model.SyncDropped
	}
	return model.SyncQueued
}

// ClearScores removes every local rating.
func (s *Service) ClearScores(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Users lists the local comparison overlay.
func (s *Service) Users(ctx context.Context) []scorestore.User {
	return s.store.Users(ctx)
}

// AddUser stores a named score map in the overlay and returns the normalized name.
func (s *Service) AddUser(ctx context.Context, name string, scores category.ScoreMap) (string, error) {
	n, err := s.store.AddUser(ctx, name, scores)
	if err != nil {
		return "", err
	}
	metrics.UpdateLocalUsers(len(s.store.Users(ctx)))
	return n, nil
}

// RemoveUser deletes one overlay entry.
func (s *Service) RemoveUser(ctx context.Context, name string) error {
	if err := s.store.RemoveUser(ctx, name); err != nil {
		return err
	}
	metrics.UpdateLocalUsers(len(s.store.Users(ctx)))
	return nil
}

// ClearUsers empties the overlay.
func (s *Service) ClearUsers(ctx context.Context) error {
	if err := s.store.ClearUsers(ctx); err != nil {
		return err
	}
	metrics.UpdateLocalUsers(0)
	return nil
}
