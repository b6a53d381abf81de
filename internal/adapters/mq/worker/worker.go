// Package worker pushes queued score changes to the cloud backend.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/mq/queue"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

const (
	defaultPushTimeout  = 15 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Syncer is the part of the cloud service a worker writes through.
type Syncer interface {
	SaveScores(ctx context.Context, m category.ScoreMap) error
	LogScoreEvent(ctx context.Context, c category.Category, score float64, note string) error
}

// Queue defines how workers receive changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// InMemoryWorker consumes changes until its queue is closed or its context ends.
type InMemoryWorker struct {
	queue   Queue
	syncer  Syncer
	name    string
	timeout time.Duration
	logger  logger.Logger

	done chan struct{}
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, syncer Syncer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		syncer:  syncer,
		name:    "worker",
		timeout: defaultPushTimeout,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run processes changes until the queue drains after Close or ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for change := range w.queue.Dequeue(ctx) {
		if err := w.process(ctx, change); err != nil {
			w.logger.Error(ctx, "cloud sync failed",
				logger.String("event_id", change.EventID),
				logger.String("category", string(change.Category)),
				logger.Error(err),
			)
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process pushes one change. Failures are not retried; the local copy stays
// authoritative and the next change carries the full map again.
func (w *InMemoryWorker) process(ctx context.Context, change queue.Event) error { //nolint:gocritic // received by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	ctx, cancel := context.WithTimeout(remote.WithAccessToken(ctx, change.AccessToken), w.timeout)
	defer cancel()

	if err := w.syncer.SaveScores(ctx, change.Scores); err != nil {
		w.fail("save_scores")
		return fmt.Errorf("save scores for %s: %w", change.EventID, err)
	}
	if err := w.syncer.LogScoreEvent(ctx, change.Category, change.Score, change.Note); err != nil {
		w.fail("log_event")
		return fmt.Errorf("log event %s: %w", change.EventID, err)
	}

	metrics.RecordEventProcessed()
	return nil
}

func (w *InMemoryWorker) fail(kind string) {
	metrics.RecordEventFailed()
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	cancel  context.CancelFunc
	once    sync.Once
	logger  logger.Logger
}

// NewPool creates count workers. A count below 1 uses one worker per CPU.
func NewPool(count int, q Queue, syncer Syncer, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, count),
		queue:   q,
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, syncer, wopts...)
	}
	p.logger = p.workers[0].logger
	metrics.UpdateWorkerCount(count)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker. Cancelling ctx stops them without draining.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it. Workers still
// busy when ctx or the pool timeout ends are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()
		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-waitCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown timed out: %w", waitCtx.Err())
			}
			if err != nil {
				break
			}
		}
		if p.cancel != nil {
			p.cancel()
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}
