package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/cache"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/cloud"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/http/api"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/http/site"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/http/swagger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/kv"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/notify"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	app "github.com/Jetstb21/Icould--B-SATO-SHI/internal/app"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/config"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/scoring"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Only the service's own registry is exposed; drop the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("satoshi: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, closeAll, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("cloud", cfg.CloudEnabled()),
			logger.Bool("mail", cfg.MailEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	svc.Stop(shutdownCtx)

	log.Info(ctx, "server stopped")
	return nil
}

// openStore opens the configured key/value backend.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (kv.Store, error) {
	if cfg.StoreBackend == config.StoreSQLite {
		s, err := kv.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	}
	return kv.NewFileStore(cfg.StorePath, kv.WithFileLogger(log.Named("kv"))), nil
}

// openCache returns Redis when an address is configured and reachable, and the
// in-process cache otherwise.
func openCache(ctx context.Context, cfg *config.Config, log logger.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	r := cache.NewRedis(cfg.RedisAddr, "", 0)
	if err := r.Ping(ctx); err != nil {
		log.Warn(ctx, "redis unreachable, using in-memory cache", logger.String("addr", cfg.RedisAddr), logger.Error(err))
		_ = r.Close()
		return cache.NewMemory()
	}
	return r
}

// buildService wires the stores and optional backends into the service. The
// returned func releases what was opened.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	backend, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{backend.Close}
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithScorer(scoring.New(scoring.WithWeightsFromConfig(cfg.ScoreWeights))),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLeaderboardRefresh(cfg.LeaderboardRefresh),
	}

	if cfg.RequirementsFile != "" {
		reqs, err := benchmark.LoadRequirements(cfg.RequirementsFile)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opts = append(opts, app.WithRequirements(reqs))
	}

	if cfg.CloudEnabled() {
		client, err := remote.New(cfg.RemoteURL, cfg.RemoteAnonKey,
			remote.WithTimeout(cfg.RemoteTimeout),
			remote.WithJWTSecret(cfg.JWTSecret),
			remote.WithLogger(log.Named("remote")),
		)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("remote client: %w", err)
		}
		c := openCache(ctx, cfg, log)
		closers = append(closers, c.Close)
		opts = append(opts, app.WithCloud(cloud.New(client,
			cloud.WithCache(c, cfg.AveragesTTL),
			cloud.WithLogger(log.Named("cloud")),
		)))
	}

	if cfg.MailEnabled() {
		opts = append(opts, app.WithMailer(notify.NewMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom,
			notify.WithLogger(log.Named("mail")),
		)))
	}

	return app.New(scorestore.New(backend, scorestore.WithLogger(log.Named("store"))), opts...), closeAll, nil
}

// newHandler registers the API, the docs and the front end on one mux.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, cfg.MaxLeaderboardLimit,
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithPublicBaseURL(cfg.PublicBaseURL),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	return api.Handler(mux)
}

// startSystemMetricsUpdater refreshes process metrics until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater mirrors service stats into gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if users, ok := stats["localUsers"].(int); ok {
		metrics.UpdateLocalUsers(users)
	}
	if ranked, ok := stats["rankedProfiles"].(int); ok {
		metrics.UpdateLeaderboardProfiles(ranked)
	}
}
