package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	percentage          = 100
)

// Run executes the complete load test and returns its statistics.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Token, cfg.Timeout)

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("events", cfg.NumEvents),
		logger.Int("workers", cfg.Workers),
		logger.Bool("signedIn", cfg.Token != ""),
	)

	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	events := Generate(cfg.NumEvents, cfg.DuplicateRate, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	stats.EventsGenerated = len(events)

	submit(ctx, cfg, c, events, stats, log)
	log.Info(ctx, "submission completed",
		logger.Int("local", stats.EventsLocal),
		logger.Int("queued", stats.EventsQueued),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("dropped", stats.EventsDropped),
		logger.Int("failed", stats.EventsFailed),
	)

	entries, err := leaderboard(ctx, c, cfg.TopN)
	if err != nil {
		return nil, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(entries)
	if err := checkOrder(entries); err != nil {
		return stats, err
	}
	stats.RanksChecked, err = checkRanks(ctx, c, entries, cfg.Workers)
	if err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveEvents(cfg.OutputFile, events); err != nil {
			log.Warn(ctx, "failed to save events to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinal(ctx, log, stats)
	return stats, nil
}

func saveEvents(path string, events []Event) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	return os.WriteFile(path, b, filePermission)
}

func logFinal(ctx context.Context, log logger.Logger, s *Stats) {
	var successRate, perSecond float64
	if s.EventsSubmitted > 0 {
		successRate = float64(s.EventsSubmitted-s.EventsFailed) / float64(s.EventsSubmitted) * percentage
	}
	if s.Duration > 0 {
		perSecond = float64(s.EventsSubmitted) / s.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("eventsGenerated", s.EventsGenerated),
		logger.Int("eventsSubmitted", s.EventsSubmitted),
		logger.Int("eventsFailed", s.EventsFailed),
		logger.Int("leaderboardEntries", s.LeaderboardEntries),
		logger.Int("ranksChecked", s.RanksChecked),
		logger.Duration("duration", s.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", perSecond),
	)
}
