package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/cache"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/config"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New(context.Background())
	cfg.StorePath = filepath.Join(t.TempDir(), "data.json")
	return cfg
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given settings in the environment", t, func() {
		t.Setenv("SATOSHI_ADDR", ":8080")
		t.Setenv("SATOSHI_QUEUE_SIZE", "1000")
		t.Setenv("SATOSHI_WORKER_COUNT", "4")

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an empty address", t, func() {
		t.Setenv("SATOSHI_ADDR", "")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a local-only configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		convey.Convey("When the service is built on the file store", func() {
			svc, closeAll, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer closeAll()

			convey.Convey("Then the cloud is disabled and ratings persist", func() {
				convey.So(svc.CloudEnabled(), convey.ShouldBeFalse)
				_, err := svc.SetScore(ctx, category.Coding, 8, "", "")
				convey.So(err, convey.ShouldBeNil)
				_, statErr := os.Stat(cfg.StorePath)
				convey.So(statErr, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sqlite backend is selected", func() {
			cfg.StoreBackend = config.StoreSQLite
			cfg.StorePath = filepath.Join(t.TempDir(), "data.db")
			svc, closeAll, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer closeAll()

			convey.Convey("Then ratings round-trip through it", func() {
				_, err := svc.SetScore(ctx, category.Writing, 6.5, "", "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Scores(ctx), convey.ShouldResemble, category.ScoreMap{category.Writing: 6.5})
			})
		})

		convey.Convey("When custom weights are configured", func() {
			cfg.ScoreWeights = map[string]float64{"coding": 100}
			svc, closeAll, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer closeAll()

			convey.So(svc.Weights()[category.Coding], convey.ShouldEqual, 100)
		})

		convey.Convey("When a requirements file is configured", func() {
			path := filepath.Join(t.TempDir(), "reqs.yaml")
			doc := "requirements:\n  - benchmark: Satoshi\n    metric: coding\n    target: 9\n    detail: Ship a full node\n"
			convey.So(os.WriteFile(path, []byte(doc), 0o600), convey.ShouldBeNil)
			cfg.RequirementsFile = path

			svc, closeAll, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer closeAll()

			convey.Convey("Then gaps come from its rows", func() {
				items, err := svc.Gaps(ctx, category.ScoreMap{}, "Satoshi")
				convey.So(err, convey.ShouldBeNil)
				convey.So(items, convey.ShouldHaveLength, 1)
				convey.So(items[0].Detail, convey.ShouldEqual, "Ship a full node")
			})
		})

		convey.Convey("When the requirements file is missing", func() {
			cfg.RequirementsFile = filepath.Join(t.TempDir(), "nope.yaml")
			_, _, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a cloud configuration", t, func() {
		cfg := testConfig(t)
		cfg.RemoteURL = "http://127.0.0.1:1"
		cfg.RemoteAnonKey = "anon"

		svc, closeAll, err := buildService(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer closeAll()

		convey.So(svc.CloudEnabled(), convey.ShouldBeTrue)
	})
}

func TestOpenCache(t *testing.T) {
	convey.Convey("Given cache settings", t, func() {
		cfg := testConfig(t)

		convey.Convey("Without a redis address the memory cache is used", func() {
			c := openCache(context.Background(), cfg, logger.Nop())
			_, ok := c.(*cache.Memory)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("An unreachable redis falls back to memory", func() {
			cfg.RedisAddr = "127.0.0.1:1"
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			c := openCache(ctx, cfg, logger.Nop())
			_, ok := c.(*cache.Memory)
			convey.So(ok, convey.ShouldBeTrue)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the assembled handler", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		svc, closeAll, err := buildService(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer closeAll()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		h := newHandler(ctx, cfg, svc, logger.Nop())

		for _, path := range []string{"/", "/share?d=e30", "/api-docs", "/openapi.yaml", "/api/categories", "/api/leaderboard", "/healthz"} {
			convey.Convey("Then GET "+path+" is served", func() {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		}
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		cfg := testConfig(t)
		svc, closeAll, err := buildService(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer closeAll()

		convey.Convey("Then they return when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then single updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
