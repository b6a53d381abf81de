package loadtest

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

const (
	workerChannelMultiplier = 2
	progressInterval        = time.Second
)

// outcome buckets a submission by the sync result the server reported.
func outcome(ctx context.Context, c *client, e Event) string {
	var res model.ScoreUpdate
	h := http.Header{}
	h.Set("Idempotency-Key", e.EventID)
	body := map[string]any{"score": e.Score, "note": e.Note}
	if _, err := c.do(ctx, http.MethodPut, "/api/scores/"+e.Category, body, h, &res); err != nil {
		return "failed"
	}
	return res.Sync
}

// submit sends events with cfg.Workers concurrent submitters and fills the
// submission counters of stats.
func submit(ctx context.Context, cfg *Config, c *client, events []Event, stats *Stats, log logger.Logger) {
	var submitted, local, queued, duplicate, dropped, failed atomic.Int64
	var lastReport atomic.Int64

	ch := make(chan Event, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range ch {
				switch outcome(ctx, c, e) {
				case model.SyncLocal:
					local.Add(1)
				case model.SyncQueued:
					queued.Add(1)
				case model.SyncDuplicate:
					duplicate.Add(1)
				case model.SyncDropped:
					dropped.Add(1)
				default:
					failed.Add(1)
				}
				n := submitted.Add(1)

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if cfg.Verbose && time.Duration(now-last) >= progressInterval && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress", logger.Int("submitted", int(n)), logger.Int("total", len(events)))
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, e := range events {
			select {
			case <-ctx.Done():
				return
			case ch <- e:
			}
		}
	}()
	wg.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsLocal = int(local.Load())
	stats.EventsQueued = int(queued.Load())
	stats.EventsDuplicate = int(duplicate.Load())
	stats.EventsDropped = int(dropped.Load())
	stats.EventsFailed = int(failed.Load())
}
