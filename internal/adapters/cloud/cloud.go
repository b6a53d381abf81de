// Package cloud implements the typed operations of the optional hosted backend:
// score sync, history, aggregates, published profiles and requirement rows.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/cache"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
	"github.com/google/uuid"
)

// Backend tables and functions.
const (
	TableScores       = "user_scores"
	TableEvents       = "user_score_events"
	TableProfiles     = "profiles"
	TableRequirements = "benchmark_requirements"
	FnAverages        = "get_category_averages"

	// DefaultHistoryLimit is used when History is called with a non-positive limit.
	DefaultHistoryLimit = 50

	averagesKey = "category_averages"
)

// Remote is the subset of the remote accessor the cloud operations need.
type Remote interface {
	Authenticate(ctx context.Context, email, redirectTo string) error
	Session(ctx context.Context) (*remote.Session, error)
	Select(ctx context.Context, table string, q remote.Query, out any) error
	Insert(ctx context.Context, table string, row any) error
	Upsert(ctx context.Context, table string, row any, conflictKey string) error
	RPC(ctx context.Context, fn string, args, out any) error
}

// Service runs cloud operations on behalf of the user whose token is on ctx.
type Service struct {
	remote      Remote
	cache       cache.Cache
	averagesTTL time.Duration
	logger      logger.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the cache used for category averages.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
			s.averagesTTL = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source for written timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New wires cloud operations over r.
func New(r Remote, opts ...Option) *Service {
	s := &Service{
		remote:      r,
		cache:       cache.NewMemory(),
		averagesTTL: 5 * time.Minute,
		logger:      logger.Nop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate sends a magic sign-in link to email.
func (s *Service) Authenticate(ctx context.Context, email, redirectTo string) error {
	return s.remote.Authenticate(ctx, email, redirectTo)
}

// Session returns the signed-in user.
func (s *Service) Session(ctx context.Context) (*remote.Session, error) {
	return s.remote.Session(ctx)
}

type scoresRow struct {
	UserID    string             `json:"user_id,omitempty"`
	Scores    map[string]float64 `json:"scores"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}

// SaveScores upserts the user's full score map.
func (s *Service) SaveScores(ctx context.Context, m category.ScoreMap) error {
	sess, err := s.remote.Session(ctx)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	row := scoresRow{UserID: sess.UserID, Scores: m.Raw(), UpdatedAt: s.now().UTC().Format(time.RFC3339Nano)}
	return s.remote.Upsert(ctx, TableScores, row, "user_id")
}

// LoadScores reads the user's saved score map. No saved row yields an empty map.
// Entries outside the category set or scale are dropped.
func (s *Service) LoadScores(ctx context.Context) (category.ScoreMap, error) {
	sess, err := s.remote.Session(ctx)
	if err != nil {
		return nil, err
	}
	var rows []scoresRow
	q := remote.Query{Columns: "scores", Eq: []remote.Filter{{Column: "user_id", Value: sess.UserID}}, Limit: 1}
	if err := s.remote.Select(ctx, TableScores, q, &rows); err != nil {
		return nil, err
	}
	out := category.ScoreMap{}
	if len(rows) == 0 {
		return out, nil
	}
	for k, v := range rows[0].Scores {
		c := category.Category(k)
		if category.CheckScore(c, v) == nil {
			out[c] = v
		}
	}
	return out, nil
}

type eventRow struct {
	UserID   string  `json:"user_id"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Note     *string `json:"note"`
}

// LogScoreEvent appends one history row. Without a session it does nothing.
func (s *Service) LogScoreEvent(ctx context.Context, c category.Category, score float64, note string) error {
	sess, err := s.remote.Session(ctx)
	if errors.Is(err, remote.ErrNotSignedIn) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := category.CheckScore(c, score); err != nil {
		return err
	}
	row := eventRow{UserID: sess.UserID, Category: string(c), Score: score}
	if n := strings.TrimSpace(note); n != "" {
		row.Note = &n
	}
	return s.remote.Insert(ctx, TableEvents, row)
}

// History returns the user's score events, latest first.
func (s *Service) History(ctx context.Context, limit int) ([]model.ScoreEvent, error) {
	sess, err := s.remote.Session(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	out := []model.ScoreEvent{}
	q := remote.Query{
		Columns: "id,category,score,note,created_at",
		Eq:      []remote.Filter{{Column: "user_id", Value: sess.UserID}},
		Order:   "created_at",
		Desc:    true,
		Limit:   limit,
	}
	if err := s.remote.Select(ctx, TableEvents, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryAverages returns the anonymous per-category aggregates, read through the cache.
func (s *Service) CategoryAverages(ctx context.Context) ([]model.CategoryAverage, error) {
	out := []model.CategoryAverage{}
	hit, err := s.cache.Get(ctx, averagesKey, &out)
	if err != nil {
		s.logger.Warn(ctx, "averages cache read failed", logger.Error(err))
	}
	metrics.RecordCacheLookup(averagesKey, hit)
	if hit {
		return out, nil
	}
	out = []model.CategoryAverage{}
	if err := s.remote.RPC(ctx, FnAverages, nil, &out); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, averagesKey, out, s.averagesTTL); err != nil {
		s.logger.Warn(ctx, "averages cache write failed", logger.Error(err))
	}
	return out, nil
}

// Profiles returns every profile visible to the caller.
func (s *Service) Profiles(ctx context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	if err := s.remote.Select(ctx, TableProfiles, remote.Query{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublishedProfiles returns published profiles, newest first.
func (s *Service) PublishedProfiles(ctx context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	q := remote.Query{
		Eq:    []remote.Filter{{Column: "published", Value: "true"}},
		Order: "created_at",
		Desc:  true,
	}
	if err := s.remote.Select(ctx, TableProfiles, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns one profile by id.
func (s *Service) Profile(ctx context.Context, id string) (*model.Profile, error) {
	var rows []model.Profile
	q := remote.Query{Eq: []remote.Filter{{Column: "id", Value: id}}, Limit: 1}
	if err := s.remote.Select(ctx, TableProfiles, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return &rows[0], nil
}

// PublishProfile stores a published profile built from sub and returns it.
func (s *Service) PublishProfile(ctx context.Context, sub model.Submission) (*model.Profile, error) {
	if _, err := s.remote.Session(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	}
	if err := sub.Scores.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	p := model.Profile{
		ID:        s.newID(),
		Name:      name,
		Published: true,
		CreatedAt: s.now().UTC(),
	}
	if n := strings.TrimSpace(sub.Note); n != "" {
		p.Note = &n
	}
	p.SetScores(sub.Scores)
	if err := s.remote.Insert(ctx, TableProfiles, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Requirements reads requirement rows of one benchmark. Rows naming an unknown
// metric are dropped.
func (s *Service) Requirements(ctx context.Context, benchmark string) ([]gaps.Requirement, error) {
	var rows []gaps.Requirement
	q := remote.Query{Eq: []remote.Filter{{Column: "benchmark", Value: benchmark}}}
	if err := s.remote.Select(ctx, TableRequirements, q, &rows); err != nil {
		return nil, err
	}
	out := make([]gaps.Requirement, 0, len(rows))
	for _, r := range rows {
		if r.Metric.Valid() {
			out = append(out, r)
		}
	}
	return out, nil
}
