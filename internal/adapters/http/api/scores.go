package api

import (
	"net/http"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// ScoresHandler serves the local rating routes.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type categoryInfo struct {
	ID     category.Category `json:"id"`
	Label  string            `json:"label"`
	Weight float64           `json:"weight"`
}

type scoresResponse struct {
	Scores category.ScoreMap `json:"scores"`
	Score  int               `json:"score"`
}

type scoreResponse struct {
	Score int `json:"score"`
}

type updateRequest struct {
	Score   float64 `json:"score"`
	Note    string  `json:"note"`
	EventID string  `json:"event_id"`
}

type gapsResponse struct {
	Benchmark  string      `json:"benchmark"`
	Gaps       []gaps.Item `json:"gaps"`
	TotalDelta float64     `json:"total_delta"`
}

// HandleCategories handles GET /api/categories.
func (h *ScoresHandler) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	weights := h.deps.Weights()
	out := make([]categoryInfo, 0, len(category.All()))
	for _, c := range category.All() {
		out = append(out, categoryInfo{ID: c, Label: c.Label(), Weight: weights[c]})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleBenchmarks handles GET /api/benchmarks.
func (h *ScoresHandler) HandleBenchmarks(w http.ResponseWriter, _ *http.Request) {
	all := benchmark.All()
	out := make([]model.Target, 0, len(all))
	for _, b := range all {
		out = append(out, model.Target{ID: b.ID, Name: b.Name, Scores: b.Scores, Score: h.deps.Score(b.Scores)})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleBlueprint handles GET /api/blueprint.
func (h *ScoresHandler) HandleBlueprint(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Blueprint())
}

// HandleGetScores handles GET /api/scores.
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	m := h.deps.Scores(r.Context())
	writeJSON(w, http.StatusOK, scoresResponse{Scores: m, Score: h.deps.Score(m)})
}

// HandlePutScore handles PUT /api/scores/{category}. An Idempotency-Key header
// is used as the event id when the body carries none.
func (h *ScoresHandler) HandlePutScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_score"

	c, err := category.Parse(r.PathValue("category"))
	if err != nil {
		fail(w, op, err)
		return
	}
	var req updateRequest
	if err := decodeBody(r, updateSchema, &req); err != nil {
		fail(w, op, err)
		return
	}
	if req.EventID == "" {
		req.EventID = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	}

	res, err := h.deps.SetScore(r.Context(), c, req.Score, strings.TrimSpace(req.Note), req.EventID)
	if err != nil {
		fail(w, op, err)
		return
	}
	status := http.StatusOK
	if res.Sync == model.SyncQueued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

// HandleClearScores handles DELETE /api/scores.
func (h *ScoresHandler) HandleClearScores(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearScores(r.Context()); err != nil {
		fail(w, "api.clear_scores", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetScore handles GET /api/score. A "d" score code scores a shared map
// instead of the stored one.
func (h *ScoresHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	m := h.deps.Scores(r.Context())
	if code := r.URL.Query().Get(share.ScoresParam); code != "" {
		m = share.DecodeScores(code)
		metrics.RecordShareCode("scores", "decode", len(m) > 0)
	}
	writeJSON(w, http.StatusOK, scoreResponse{Score: h.deps.Score(m)})
}

// HandlePostScore handles POST /api/score with a ScoreMap body.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	var raw map[string]float64
	if err := decodeBody(r, scoresSchema, &raw); err != nil {
		fail(w, "api.post_score", err)
		return
	}
	m, _ := category.FromRaw(raw)
	writeJSON(w, http.StatusOK, scoreResponse{Score: h.deps.Score(m)})
}

// HandleGaps handles GET /api/gaps?benchmark=Name[&d=code].
func (h *ScoresHandler) HandleGaps(w http.ResponseWriter, r *http.Request) {
	const op = "api.gaps"

	q := r.URL.Query()
	bench := strings.TrimSpace(q.Get("benchmark"))
	if bench == "" {
		bench = "Satoshi"
	}
	user := h.deps.Scores(r.Context())
	if code := q.Get(share.ScoresParam); code != "" {
		user = share.DecodeScores(code)
	}

	items, err := h.deps.Gaps(r.Context(), user, bench)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, gapsResponse{Benchmark: bench, Gaps: items, TotalDelta: gaps.TotalDelta(items)})
}
