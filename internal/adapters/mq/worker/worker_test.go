package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/mq/queue"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/mq/worker"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type pushed struct {
	token    string
	scores   category.ScoreMap
	category category.Category
	score    float64
	note     string
}

type mockSyncer struct {
	mu      sync.Mutex
	saves   []pushed
	events  []pushed
	saveErr error
	logErr  error
}

func (m *mockSyncer) SaveScores(ctx context.Context, s category.ScoreMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	tok, _ := remote.AccessToken(ctx)
	m.saves = append(m.saves, pushed{token: tok, scores: s})
	return nil
}

func (m *mockSyncer) LogScoreEvent(ctx context.Context, c category.Category, score float64, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logErr != nil {
		return m.logErr
	}
	tok, _ := remote.AccessToken(ctx)
	m.events = append(m.events, pushed{token: tok, category: c, score: score, note: note})
	return nil
}

func (m *mockSyncer) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves), len(m.events)
}

func change(id, token string, score float64) queue.Event {
	return queue.Event{
		EventID:     id,
		AccessToken: token,
		Category:    category.Writing,
		Score:       score,
		Note:        "essay",
		Scores:      category.ScoreMap{category.Writing: score},
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		syncer := &mockSyncer{}
		w := worker.NewInMemoryWorker(q, syncer, worker.WithLogger(logger.Nop()), worker.WithName("w-test"))

		convey.Convey("When changes are queued and the queue is closed", func() {
			q.Enqueue(context.Background(), change("e1", "tok-1", 6))
			q.Enqueue(context.Background(), change("e2", "tok-2", 8))
			convey.So(q.Close(), convey.ShouldBeNil)
			w.Run(context.Background())

			convey.Convey("Then every change is saved and logged with its own token", func() {
				saves, events := syncer.counts()
				convey.So(saves, convey.ShouldEqual, 2)
				convey.So(events, convey.ShouldEqual, 2)
				convey.So(syncer.saves[0].token, convey.ShouldEqual, "tok-1")
				convey.So(syncer.events[1].token, convey.ShouldEqual, "tok-2")
				convey.So(syncer.events[1].score, convey.ShouldEqual, 8)
				convey.So(syncer.events[0].note, convey.ShouldEqual, "essay")
				convey.So(syncer.saves[1].scores[category.Writing], convey.ShouldEqual, 8)
			})

			convey.Convey("And Done is closed", func() {
				select {
				case <-w.Done():
				default:
					t.Error("done channel still open")
				}
			})
		})

		convey.Convey("When saving fails", func() {
			syncer.saveErr = errors.New("boom")
			q.Enqueue(context.Background(), change("e1", "tok", 3))
			_ = q.Close()
			w.Run(context.Background())

			convey.Convey("Then the event is not logged and the worker keeps going", func() {
				_, events := syncer.counts()
				convey.So(events, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When logging fails the scores were still saved", func() {
			syncer.logErr = remote.ErrUnauthorized
			q.Enqueue(context.Background(), change("e1", "tok", 3))
			_ = q.Close()
			w.Run(context.Background())

			saves, events := syncer.counts()
			convey.So(saves, convey.ShouldEqual, 1)
			convey.So(events, convey.ShouldEqual, 0)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		syncer := &mockSyncer{}
		p := worker.NewPool(3, q, syncer, worker.WithLogger(logger.Nop()), worker.WithTimeout(time.Second))
		convey.So(p.Size(), convey.ShouldEqual, 3)

		p.Start(context.Background())
		for i := 0; i < 20; i++ {
			q.Enqueue(context.Background(), change(fmt.Sprintf("e%d", i), "tok", float64(i%11)))
		}

		convey.Convey("Shutdown drains every queued change", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)

			saves, events := syncer.counts()
			convey.So(saves, convey.ShouldEqual, 20)
			convey.So(events, convey.ShouldEqual, 20)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)

			convey.Convey("And a second Shutdown is harmless", func() {
				convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("A non-positive worker count falls back to the CPU count", t, func() {
		p := worker.NewPool(0, queue.NewInMemoryQueue(), &mockSyncer{}, worker.WithLogger(logger.Nop()))
		convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
