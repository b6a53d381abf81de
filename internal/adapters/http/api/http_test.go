package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/http/api"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/kv"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	service "github.com/Jetstb21/Icould--B-SATO-SHI/internal/app"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// stubCloud signs in anyone carrying a token and stores nothing.
type stubCloud struct{}

func (stubCloud) Authenticate(context.Context, string, string) error { return nil }
func (stubCloud) Session(ctx context.Context) (*remote.Session, error) {
	tok, ok := remote.AccessToken(ctx)
	if !ok {
		return nil, remote.ErrNotSignedIn
	}
	return &remote.Session{UserID: "user-1", Email: "ada@example.com", AccessToken: tok}, nil
}
func (stubCloud) SaveScores(context.Context, category.ScoreMap) error { return nil }
func (stubCloud) LoadScores(context.Context) (category.ScoreMap, error) {
	return category.ScoreMap{}, nil
}
func (stubCloud) LogScoreEvent(context.Context, category.Category, float64, string) error {
	return nil
}
func (s stubCloud) History(ctx context.Context, _ int) ([]model.ScoreEvent, error) {
	if _, err := s.Session(ctx); err != nil {
		return nil, err
	}
	return []model.ScoreEvent{}, nil
}
func (stubCloud) CategoryAverages(context.Context) ([]model.CategoryAverage, error) {
	return []model.CategoryAverage{{Category: "coding", AvgScore: 6.5, Samples: 4}}, nil
}
func (stubCloud) PublishedProfiles(context.Context) ([]model.Profile, error) { return nil, nil }
func (stubCloud) Profile(context.Context, string) (*model.Profile, error) {
	return nil, remote.ErrTransport
}
func (s stubCloud) PublishProfile(ctx context.Context, sub model.Submission) (*model.Profile, error) {
	if _, err := s.Session(ctx); err != nil {
		return nil, err
	}
	p := model.Profile{ID: "p-9", Name: sub.Name, Published: true}
	p.SetScores(sub.Scores)
	return &p, nil
}
func (stubCloud) Requirements(context.Context, string) ([]gaps.Requirement, error) { return nil, nil }

func newServer(t *testing.T, opts []service.Option, apiOpts ...api.Option) *httptest.Server {
	t.Helper()
	store := scorestore.New(kv.NewFileStore(filepath.Join(t.TempDir(), "data.json")))
	svc := service.New(store, append([]service.Option{service.WithLogger(logger.Nop())}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { svc.Stop(context.Background()) })

	mux := http.NewServeMux()
	srv := api.NewServer(svc, svc, 50, append([]api.Option{api.WithPublicBaseURL("https://satoshi.test")}, apiOpts...)...)
	srv.Register(context.Background(), mux)
	ts := httptest.NewServer(api.Handler(mux))
	t.Cleanup(ts.Close)
	return ts
}

func do(ts *httptest.Server, method, path, body string, headers ...string) (*http.Response, string) {
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	So(err, ShouldBeNil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func decode(body string, out any) {
	So(json.Unmarshal([]byte(body), out), ShouldBeNil)
}

func TestLocalRoutes(t *testing.T) {
	Convey("Given an API without a cloud backend", t, func() {
		ts := newServer(t, nil)

		Convey("Categories list the weights in canonical order", func() {
			resp, body := do(ts, http.MethodGet, "/api/categories", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var cats []struct {
				ID     string  `json:"id"`
				Weight float64 `json:"weight"`
			}
			decode(body, &cats)
			So(cats, ShouldHaveLength, 6)
			So(cats[0].ID, ShouldEqual, "cryptography")
			So(cats[0].Weight, ShouldEqual, 20)
		})

		Convey("A rating is stored and scored", func() {
			resp, body := do(ts, http.MethodPut, "/api/scores/coding", `{"score": 10, "note": "shipped"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var upd model.ScoreUpdate
			decode(body, &upd)
			So(upd.Sync, ShouldEqual, model.SyncLocal)
			So(upd.Score, ShouldEqual, 17)

			resp, body = do(ts, http.MethodGet, "/api/scores", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"coding":10`)

			Convey("And cleared", func() {
				resp, _ := do(ts, http.MethodDelete, "/api/scores", "")
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				_, body := do(ts, http.MethodGet, "/api/score", "")
				So(body, ShouldContainSubstring, `"score":0`)
			})
		})

		Convey("Invalid ratings are rejected", func() {
			resp, body := do(ts, http.MethodPut, "/api/scores/coding", `{"score": 11}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(body, ShouldContainSubstring, "bad_request")

			resp, _ = do(ts, http.MethodPut, "/api/scores/charisma", `{"score": 3}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(ts, http.MethodPut, "/api/scores/coding", `{"note": "x"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A posted map is scored without being stored", func() {
			resp, body := do(ts, http.MethodPost, "/api/score", `{"cryptography":10,"distributedSystems":10,"economics":10,"coding":10,"writing":10,"community":10}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"score":100`)

			resp, _ = do(ts, http.MethodPost, "/api/score", `{"charisma": 3}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Gaps compare against a benchmark", func() {
			resp, body := do(ts, http.MethodGet, "/api/gaps?benchmark=Satoshi", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var g struct {
				Gaps       []gaps.Item `json:"gaps"`
				TotalDelta float64     `json:"total_delta"`
			}
			decode(body, &g)
			So(g.Gaps, ShouldHaveLength, 6)
			So(g.TotalDelta, ShouldEqual, 57)

			resp, _ = do(ts, http.MethodGet, "/api/gaps?benchmark=Nobody", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("The overlay accepts named score maps", func() {
			resp, _ := do(ts, http.MethodPost, "/api/users", `{"name":" Ada ","scores":{"writing":4}}`)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			_, body := do(ts, http.MethodGet, "/api/users", "")
			So(body, ShouldContainSubstring, `"name":"Ada"`)

			resp, _ = do(ts, http.MethodPost, "/api/users", `{"name":"","scores":{}}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(ts, http.MethodDelete, "/api/users?name=Ghost", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp, _ = do(ts, http.MethodDelete, "/api/users", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
		})

		Convey("Score codes round-trip through share and decode", func() {
			do(ts, http.MethodPut, "/api/scores/economics", `{"score": 7.5}`)
			_, body := do(ts, http.MethodGet, "/api/share", "")
			var sh struct {
				Code string `json:"code"`
				URL  string `json:"url"`
			}
			decode(body, &sh)
			So(sh.URL, ShouldStartWith, "https://satoshi.test/share?d=")
			So(share.ReadScores(sh.URL), ShouldResemble, category.ScoreMap{category.Economics: 7.5})

			_, body = do(ts, http.MethodGet, "/api/share/decode?d="+sh.Code, "")
			So(body, ShouldContainSubstring, `"economics":7.5`)

			resp, body := do(ts, http.MethodGet, "/api/share/decode?d=bm90LWpzb24", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"scores":{}`)
		})

		Convey("Comparisons resolve codes and links", func() {
			code := share.ToCompareCode([]string{"bm-hal", "bm-wei"})
			resp, body := do(ts, http.MethodGet, "/api/compare?code="+code, "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var cmp struct {
				IDs       []string       `json:"ids"`
				ShortLink string         `json:"short_link"`
				Targets   []model.Target `json:"targets"`
			}
			decode(body, &cmp)
			So(cmp.IDs, ShouldResemble, []string{"bm-hal", "bm-wei"})
			So(cmp.Targets[0].Name, ShouldEqual, "Hal Finney")
			So(cmp.ShortLink, ShouldEqual, "https://satoshi.test/#/c/"+code)

			_, body = do(ts, http.MethodGet, "/api/compare?hash=%23bm-satoshi,unknown", "")
			decode(body, &cmp)
			So(cmp.IDs, ShouldResemble, []string{"bm-satoshi"})

			resp, body = do(ts, http.MethodPost, "/api/compare/link", `{"ids":["a","b","c","d"]}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"ids":["a","b","c"]`)
		})

		Convey("The radar chart is SVG", func() {
			resp, body := do(ts, http.MethodGet, "/api/radar.svg?ids=bm-satoshi&self=1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldEqual, "image/svg+xml")
			So(body, ShouldContainSubstring, "<svg")
			So(body, ShouldContainSubstring, "Satoshi")
		})

		Convey("The report downloads as a named PDF", func() {
			resp, body := do(ts, http.MethodGet, "/api/report.pdf?name=Ada%20Lovelace", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldEqual, "application/pdf")
			So(resp.Header.Get("Content-Disposition"), ShouldContainSubstring, "Ada_Lovelace_satoshi_report.pdf")
			So(body, ShouldStartWith, "%PDF-")
		})

		Convey("Sending a report validates fields first", func() {
			resp, _ := do(ts, http.MethodPost, "/api/send-report", `{"to":"a@example.com"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp, body := do(ts, http.MethodPost, "/api/send-report", `{"to":"a@example.com","reportUrl":"https://e.com/r.pdf"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			So(body, ShouldContainSubstring, "mail_disabled")
		})

		Convey("Cloud routes report the missing backend", func() {
			for _, path := range []string{"/api/session", "/api/history", "/api/averages", "/api/profiles", "/api/cloud/load"} {
				resp, body := do(ts, http.MethodGet, path, "")
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(body, ShouldContainSubstring, "cloud_disabled")
			}
		})

		Convey("The leaderboard ranks benchmarks with a bounded limit", func() {
			resp, body := do(ts, http.MethodGet, "/api/leaderboard", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"profile_id":"bm-satoshi"`)

			resp, _ = do(ts, http.MethodGet, "/api/leaderboard?limit=0", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp, body = do(ts, http.MethodGet, "/api/leaderboard?limit=51", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(body, ShouldContainSubstring, "limit_exceeded")

			resp, body = do(ts, http.MethodGet, "/api/leaderboard/bm-hal", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"rank":2`)
			resp, _ = do(ts, http.MethodGet, "/api/leaderboard/nobody", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("Health exposes Prometheus metrics", func() {
			do(ts, http.MethodGet, "/api/categories", "")
			resp, body := do(ts, http.MethodGet, "/healthz", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, "satoshi_")
		})

		Convey("Stats report the service state", func() {
			_, body := do(ts, http.MethodGet, "/stats", "")
			So(body, ShouldContainSubstring, `"cloud":false`)
		})
	})
}

func TestCloudRoutes(t *testing.T) {
	Convey("Given an API with a cloud backend", t, func() {
		ts := newServer(t, []service.Option{service.WithCloud(stubCloud{})})

		Convey("Own data needs a session", func() {
			resp, body := do(ts, http.MethodGet, "/api/history", "")
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
			So(body, ShouldContainSubstring, "not_signed_in")

			resp, _ = do(ts, http.MethodGet, "/api/history", "", "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("History limits are bounded like the leaderboard", func() {
			resp, _ := do(ts, http.MethodGet, "/api/history?limit=50", "", "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, body := do(ts, http.MethodGet, "/api/history?limit=51", "", "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(body, ShouldContainSubstring, "limit_exceeded")

			resp, _ = do(ts, http.MethodGet, "/api/history?limit=-3", "", "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("The session is read from the bearer token", func() {
			resp, body := do(ts, http.MethodGet, "/api/session", "", "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, "ada@example.com")
		})

		Convey("Signed-in rating updates are queued", func() {
			resp, body := do(ts, http.MethodPut, "/api/scores/writing", `{"score": 5}`,
				"Authorization", "Bearer tok", "Idempotency-Key", "evt-42")
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			So(body, ShouldContainSubstring, `"event_id":"evt-42"`)

			resp, body = do(ts, http.MethodPut, "/api/scores/writing", `{"score": 5}`,
				"Authorization", "Bearer tok", "Idempotency-Key", "evt-42")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"sync":"duplicate"`)
		})

		Convey("Publishing validates the body and returns the profile", func() {
			resp, _ := do(ts, http.MethodPost, "/api/profiles", `{"name":"Bob","scores":{"coding":11}}`, "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, body := do(ts, http.MethodPost, "/api/profiles", `{"name":"Bob","scores":{"coding":9}}`, "Authorization", "Bearer tok")
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(body, ShouldContainSubstring, `"id":"p-9"`)
		})

		Convey("Upstream failures surface as bad gateway", func() {
			resp, body := do(ts, http.MethodGet, "/api/profiles/p-1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadGateway)
			So(body, ShouldContainSubstring, "upstream_error")
		})

		Convey("Averages are public", func() {
			resp, body := do(ts, http.MethodGet, "/api/averages", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `"avg_score":6.5`)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limit of one request per client", t, func() {
		ts := newServer(t, nil, api.WithRateLimit(0.001, 1))

		resp, _ := do(ts, http.MethodPut, "/api/scores/coding", `{"score": 1}`)
		So(resp.StatusCode, ShouldEqual, http.StatusOK)

		resp, body := do(ts, http.MethodPut, "/api/scores/coding", `{"score": 2}`)
		So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
		So(body, ShouldContainSubstring, "rate_limited")

		Convey("Read routes are not limited", func() {
			resp, _ := do(ts, http.MethodGet, "/api/scores", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
