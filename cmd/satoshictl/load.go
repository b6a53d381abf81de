package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/loadtest"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

const (
	defaultNumEvents   = 1000
	defaultTopN        = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func newLoadCmd() *cobra.Command {
	cfg := loadtest.Config{}
	var verbose bool
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit concurrent rating updates to a running server",
		Long: `Submit concurrent rating updates to a running server and check the
leaderboard it serves afterwards.

With --token the updates carry a session and go through the cloud sync queue;
--dup resends earlier event ids to exercise deduplication.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWith(cmd.ErrOrStderr(), "text"); err != nil {
				return err
			}
			if verbose {
				_ = logger.SetLevelString("debug")
			}
			cfg.Verbose = verbose
			if cfg.Token == "" {
				cfg.Token = os.Getenv("SATOSHI_TOKEN")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
			defer cancel()

			stats, err := loadtest.Run(ctx, &cfg, logger.Named("load"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted %d (local %d, queued %d, duplicate %d, dropped %d, failed %d) in %s\n",
				stats.EventsSubmitted, stats.EventsLocal, stats.EventsQueued, stats.EventsDuplicate,
				stats.EventsDropped, stats.EventsFailed, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the server")
	f.IntVar(&cfg.NumEvents, "events", defaultNumEvents, "rating updates to submit")
	f.Float64Var(&cfg.DuplicateRate, "dup", 0.1, "share of updates resending an earlier event id")
	f.IntVar(&cfg.TopN, "top", defaultTopN, "leaderboard entries to check")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "per-request timeout")
	f.StringVar(&cfg.Token, "token", "", "bearer token (default $SATOSHI_TOKEN)")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "write generated events to this file")
	f.BoolVarP(&verbose, "verbose", "v", false, "log progress")
	return cmd
}
