// Package service wires the stores, the cloud backend and the sync pipeline
// into the operations served over HTTP.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/mq/queue"
	workerpool "github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/mq/worker"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/notify"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/repository"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/dedupe"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/scoring"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// Cloud is the backend the service talks to when remote access is configured.
type Cloud interface {
	Authenticate(ctx context.Context, email, redirectTo string) error
	Session(ctx context.Context) (*remote.Session, error)
	SaveScores(ctx context.Context, m category.ScoreMap) error
	LoadScores(ctx context.Context) (category.ScoreMap, error)
	LogScoreEvent(ctx context.Context, c category.Category, score float64, note string) error
	History(ctx context.Context, limit int) ([]model.ScoreEvent, error)
	CategoryAverages(ctx context.Context) ([]model.CategoryAverage, error)
	PublishedProfiles(ctx context.Context) ([]model.Profile, error)
	Profile(ctx context.Context, id string) (*model.Profile, error)
	PublishProfile(ctx context.Context, sub model.Submission) (*model.Profile, error)
	Requirements(ctx context.Context, benchmark string) ([]gaps.Requirement, error)
}

// Mailer sends report links.
type Mailer interface {
	Send(ctx context.Context, r notify.Report) error
}

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	store       *scorestore.Store
	cloud       Cloud
	mailer      Mailer
	scorer      *scoring.Scorer
	requirement []gaps.Requirement
	blueprint   benchmark.Blueprint

	leaderboard repository.Store
	deduper     dedupe.Deduper
	queue       eventqueue.Queue
	pool        *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int
	refresh     time.Duration

	started bool
	stopCh  chan struct{}
	loopWG  sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCloud enables the remote backend.
func WithCloud(c Cloud) Option {
	return func(s *Service) { s.cloud = c }
}

// WithMailer enables report e-mails.
func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithScorer sets the comparison scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithRequirements replaces the built-in requirement rows.
func WithRequirements(reqs []gaps.Requirement) Option {
	return func(s *Service) {
		if len(reqs) > 0 {
			s.requirement = reqs
		}
	}
}

// WithWorkerCount sets the number of sync workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the sync queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many change ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLeaderboardRefresh sets how often published profiles are re-ranked.
func WithLeaderboardRefresh(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the local store.
func New(store *scorestore.Store, opts ...Option) *Service {
	bp := benchmark.DefaultBlueprint()
	s := &Service{
		store:       store,
		scorer:      scoring.New(),
		blueprint:   bp,
		requirement: benchmark.Requirements(bp),
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  dedupe.DefaultMaxSize,
		refresh:     time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CloudEnabled reports whether a remote backend is configured.
func (s *Service) CloudEnabled() bool { return s.cloud != nil }

// Start builds the in-memory components and launches the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.stopCh = make(chan struct{})
	s.leaderboard = repository.NewTreapStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	if s.cloud != nil {
		s.pool = workerpool.NewPool(s.workerCount, s.queue, s.cloud, workerpool.WithLogger(s.logger.Named("worker")))
		s.pool.Start(context.WithoutCancel(ctx))
	}

	s.refreshLeaderboard(ctx)
	s.loopWG.Add(1)
	go s.leaderboardLoop(context.WithoutCancel(ctx), s.stopCh)

	metrics.UpdateLocalUsers(len(s.store.Users(ctx)))

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Bool("cloud", s.cloud != nil),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending cloud syncs and stops background loops.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping service")

	close(s.stopCh)
	s.loopWG.Wait()

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "sync workers did not drain", logger.Error(err))
		}
	} else {
		_ = s.queue.Close()
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"cloud":       s.cloud != nil,
		"mail":        s.mailer != nil,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"localUsers":  len(s.store.Users(ctx)),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["seenChanges"] = s.deduper.Size()
		stats["rankedProfiles"] = s.leaderboard.Count(ctx)
	}
	return stats
}

// Score computes the comparison score of m with the configured weights.
func (s *Service) Score(m category.ScoreMap) int {
	metrics.RecordScoreComputed()
	return s.scorer.Score(m)
}

// Weights returns the configured category weights.
func (s *Service) Weights() map[category.Category]float64 {
	return s.scorer.Weights()
}

// Blueprint returns the qualification task lists.
func (s *Service) Blueprint() benchmark.Blueprint { return s.blueprint }

