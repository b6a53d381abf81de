// Package api serves the scoring, comparison and cloud routes over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/export/pdf"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/notify"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/remote"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/render/radar"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/scorestore"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/types"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

// ScoreDependencies covers the local rating routes.
type ScoreDependencies interface {
	Scores(ctx context.Context) category.ScoreMap
	SetScore(ctx context.Context, c category.Category, v float64, note, eventID string) (model.ScoreUpdate, error)
	ClearScores(ctx context.Context) error
	Score(m category.ScoreMap) int
	Weights() map[category.Category]float64
	Blueprint() benchmark.Blueprint
	Gaps(ctx context.Context, user category.ScoreMap, bench string) ([]gaps.Item, error)
}

// UserDependencies covers the local comparison overlay.
type UserDependencies interface {
	Users(ctx context.Context) []scorestore.User
	AddUser(ctx context.Context, name string, scores category.ScoreMap) (string, error)
	RemoveUser(ctx context.Context, name string) error
	ClearUsers(ctx context.Context) error
}

// CompareDependencies covers comparisons, charts and reports.
type CompareDependencies interface {
	CompareTargets(ctx context.Context, ids []string) []model.Target
	RadarChart(ctx context.Context, ids []string, self bool) radar.Chart
	Report(ctx context.Context, name, bench string) (pdf.Report, error)
	SendReport(ctx context.Context, r notify.Report) error
}

// CloudDependencies covers the routes backed by the remote service.
type CloudDependencies interface {
	CloudEnabled() bool
	Authenticate(ctx context.Context, email, redirectTo string) error
	Session(ctx context.Context) (*remote.Session, error)
	PushScores(ctx context.Context) (category.ScoreMap, error)
	PullScores(ctx context.Context) (category.ScoreMap, error)
	History(ctx context.Context, limit int) ([]model.ScoreEvent, error)
	CategoryAverages(ctx context.Context) ([]model.CategoryAverage, error)
	PublishedProfiles(ctx context.Context) ([]model.Profile, error)
	Profile(ctx context.Context, id string) (*model.Profile, error)
	PublishProfile(ctx context.Context, sub model.Submission) (*model.Profile, error)
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	Rank(ctx context.Context, id string) (types.Entry, error)
}

// Dependencies bundles everything the handlers need.
type Dependencies interface {
	ScoreDependencies
	UserDependencies
	CompareDependencies
	CloudDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	health  *HealthHandler
	stats   *StatsHandler
	scores  *ScoresHandler
	users   *UsersHandler
	share   *ShareHandler
	reports *ReportsHandler
	cloud   *CloudHandler

	limiter *RateLimiter
	baseURL string
	logger  logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits requests per client on mutating and outbound routes.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) { s.limiter = NewRateLimiter(rps, burst) }
}

// WithPublicBaseURL sets the origin used in generated links.
func WithPublicBaseURL(u string) Option {
	return func(s *Server) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, opts ...Option) *Server {
	s := &Server{baseURL: "http://localhost:9080", logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.health = NewHealthHandler()
	s.stats = NewStatsHandler(statsProvider)
	s.scores = NewScoresHandler(deps)
	s.users = NewUsersHandler(deps)
	s.share = NewShareHandler(deps, s.baseURL)
	s.reports = NewReportsHandler(deps, s.logger)
	s.cloud = NewCloudHandler(deps, maxLimit, s.baseURL)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	m, lim := MetricsMiddleware, s.limiter.Limit

	mux.HandleFunc("GET /healthz", m(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", m(s.stats.HandleStats, "stats"))

	mux.HandleFunc("GET /api/categories", m(s.scores.HandleCategories, "categories"))
	mux.HandleFunc("GET /api/benchmarks", m(s.scores.HandleBenchmarks, "benchmarks"))
	mux.HandleFunc("GET /api/blueprint", m(s.scores.HandleBlueprint, "blueprint"))
	mux.HandleFunc("GET /api/scores", m(s.scores.HandleGetScores, "scores"))
	mux.HandleFunc("PUT /api/scores/{category}", m(lim(s.scores.HandlePutScore, "scores"), "scores"))
	mux.HandleFunc("DELETE /api/scores", m(s.scores.HandleClearScores, "scores"))
	mux.HandleFunc("GET /api/score", m(s.scores.HandleGetScore, "score"))
	mux.HandleFunc("POST /api/score", m(s.scores.HandlePostScore, "score"))
	mux.HandleFunc("GET /api/gaps", m(s.scores.HandleGaps, "gaps"))

	mux.HandleFunc("GET /api/users", m(s.users.HandleList, "users"))
	mux.HandleFunc("POST /api/users", m(s.users.HandleAdd, "users"))
	mux.HandleFunc("DELETE /api/users", m(s.users.HandleRemove, "users"))

	mux.HandleFunc("GET /api/share", m(s.share.HandleShare, "share"))
	mux.HandleFunc("GET /api/share/decode", m(s.share.HandleDecode, "share"))
	mux.HandleFunc("GET /api/compare", m(s.share.HandleCompare, "compare"))
	mux.HandleFunc("POST /api/compare/link", m(s.share.HandleCompareLink, "compare"))
	mux.HandleFunc("GET /api/radar.svg", m(s.share.HandleRadar, "radar"))

	mux.HandleFunc("GET /api/report.pdf", m(s.reports.HandlePDF, "report"))
	mux.HandleFunc("POST /api/send-report", m(lim(s.reports.HandleSend, "send_report"), "send_report"))

	mux.HandleFunc("POST /api/auth/otp", m(lim(s.cloud.HandleOTP, "auth"), "auth"))
	mux.HandleFunc("GET /api/session", m(s.cloud.HandleSession, "session"))
	mux.HandleFunc("POST /api/cloud/save", m(lim(s.cloud.HandleSave, "cloud"), "cloud"))
	mux.HandleFunc("GET /api/cloud/load", m(s.cloud.HandleLoad, "cloud"))
	mux.HandleFunc("GET /api/history", m(s.cloud.HandleHistory, "history"))
	mux.HandleFunc("GET /api/averages", m(s.cloud.HandleAverages, "averages"))
	mux.HandleFunc("GET /api/profiles", m(s.cloud.HandleProfiles, "profiles"))
	mux.HandleFunc("GET /api/profiles/{id}", m(s.cloud.HandleProfile, "profiles"))
	mux.HandleFunc("POST /api/profiles", m(lim(s.cloud.HandlePublish, "profiles"), "profiles"))
	mux.HandleFunc("GET /api/leaderboard", m(s.cloud.HandleLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /api/leaderboard/{id}", m(s.cloud.HandleRank, "rank"))
}

// Handler wraps mux with the bearer-token middleware.
func Handler(mux *http.ServeMux) http.Handler {
	return BearerMiddleware(mux)
}
