package loadtest

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/http/api"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/kv"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	service "github.com/Jetstb21/Icould--B-SATO-SHI/internal/app"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		r := rand.New(rand.NewPCG(1, 2))

		Convey("Non-positive counts produce nothing", func() {
			So(Generate(0, 0, r), ShouldBeEmpty)
			So(Generate(-3, 0, r), ShouldNotBeNil)
		})

		Convey("Without duplicates every event id is unique and every rating valid", func() {
			events := Generate(200, 0, r)
			So(events, ShouldHaveLength, 200)
			seen := map[string]bool{}
			for _, e := range events {
				So(seen[e.EventID], ShouldBeFalse)
				seen[e.EventID] = true
				So(category.CheckScore(category.Category(e.Category), e.Score), ShouldBeNil)
				So(e.Score*2, ShouldEqual, float64(int(e.Score*2)))
			}
		})

		Convey("A full duplicate rate resends the first event", func() {
			events := Generate(10, 1, r)
			for _, e := range events {
				So(e, ShouldResemble, events[0])
			}
		})
	})
}

func TestCheckOrder(t *testing.T) {
	Convey("Given leaderboard rows", t, func() {
		Convey("Dense ranks with ties pass", func() {
			So(checkOrder([]Entry{
				{Rank: 1, ProfileID: "a", Score: 90},
				{Rank: 2, ProfileID: "b", Score: 80},
				{Rank: 2, ProfileID: "c", Score: 80},
				{Rank: 3, ProfileID: "d", Score: 10},
			}), ShouldBeNil)
			So(checkOrder(nil), ShouldBeNil)
		})

		Convey("Rising scores fail", func() {
			err := checkOrder([]Entry{{Rank: 1, ProfileID: "a", Score: 10}, {Rank: 2, ProfileID: "b", Score: 20}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("Skipped ranks fail", func() {
			err := checkOrder([]Entry{{Rank: 1, ProfileID: "a", Score: 20}, {Rank: 3, ProfileID: "b", Score: 10}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})
	})
}

func newTarget(t *testing.T) *httptest.Server {
	t.Helper()
	store := scorestore.New(kv.NewFileStore(filepath.Join(t.TempDir(), "data.json")))
	svc := service.New(store, service.WithLogger(logger.Nop()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { svc.Stop(context.Background()) })

	mux := http.NewServeMux()
	api.NewServer(svc, svc, 100).Register(context.Background(), mux)
	ts := httptest.NewServer(api.Handler(mux))
	t.Cleanup(ts.Close)
	return ts
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newTarget(t)
		out := filepath.Join(t.TempDir(), "out", "events.json")
		cfg := &Config{
			BaseURL:       ts.URL,
			NumEvents:     60,
			DuplicateRate: 0.2,
			TopN:          10,
			Workers:       4,
			Timeout:       5 * time.Second,
			OutputFile:    out,
		}

		Convey("When the load test runs without a session", func() {
			stats, err := Run(context.Background(), cfg, nil)

			Convey("Then every update is stored locally", func() {
				So(err, ShouldBeNil)
				So(stats.EventsGenerated, ShouldEqual, 60)
				So(stats.EventsSubmitted, ShouldEqual, 60)
				So(stats.EventsLocal, ShouldEqual, 60)
				So(stats.EventsFailed, ShouldEqual, 0)
			})

			Convey("And the benchmarks are ranked consistently", func() {
				So(stats.LeaderboardEntries, ShouldEqual, 5)
				So(stats.RanksChecked, ShouldEqual, 5)
			})

			Convey("And the events are written out", func() {
				_, statErr := os.Stat(out)
				So(statErr, ShouldBeNil)
			})
		})
	})

	Convey("Given no server", t, func() {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := Run(context.Background(), &Config{BaseURL: ts.URL, NumEvents: 1, TopN: 1, Timeout: time.Second}, logger.Nop())
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}
