package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
)

const defaultLeaderboardLimit = 10

// CloudHandler serves routes backed by the remote service.
type CloudHandler struct {
	deps interface {
		CloudDependencies
		Score(m category.ScoreMap) int
	}
	maxLimit int
	baseURL  string
}

// NewCloudHandler creates a cloud handler.
func NewCloudHandler(deps Dependencies, maxLimit int, baseURL string) *CloudHandler {
	if maxLimit < 1 {
		maxLimit = 100
	}
	return &CloudHandler{deps: deps, maxLimit: maxLimit, baseURL: baseURL}
}

type profileView struct {
	model.Profile
	Score int `json:"score"`
}

func (h *CloudHandler) view(p model.Profile) profileView { //nolint:gocritic // small value copy
	return profileView{Profile: p, Score: h.deps.Score(p.Scores())}
}

// HandleOTP handles POST /api/auth/otp with {"email", "redirect_to"}.
func (h *CloudHandler) HandleOTP(w http.ResponseWriter, r *http.Request) {
	const op = "api.auth_otp"

	var req struct {
		Email      string `json:"email"`
		RedirectTo string `json:"redirect_to"`
	}
	if err := decodeBody(r, nil, &req); err != nil {
		fail(w, op, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if req.RedirectTo == "" {
		req.RedirectTo = h.baseURL
	}
	if err := h.deps.Authenticate(r.Context(), req.Email, req.RedirectTo); err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

// HandleSession handles GET /api/session.
func (h *CloudHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Session(r.Context())
	if err != nil {
		fail(w, "api.session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleSave handles POST /api/cloud/save.
func (h *CloudHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.PushScores(r.Context())
	if err != nil {
		fail(w, "api.cloud_save", err)
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: m, Score: h.deps.Score(m)})
}

// HandleLoad handles GET /api/cloud/load.
func (h *CloudHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.PullScores(r.Context())
	if err != nil {
		fail(w, "api.cloud_load", err)
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: m, Score: h.deps.Score(m)})
}

// HandleHistory handles GET /api/history?limit=. An absent limit uses the
// backend default; larger values than the leaderboard maximum are rejected.
func (h *CloudHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.history"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = v
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	events, err := h.deps.History(r.Context(), limit)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleAverages handles GET /api/averages.
func (h *CloudHandler) HandleAverages(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.CategoryAverages(r.Context())
	if err != nil {
		fail(w, "api.averages", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleProfiles handles GET /api/profiles.
func (h *CloudHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.deps.PublishedProfiles(r.Context())
	if err != nil {
		fail(w, "api.profiles", err)
		return
	}
	out := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, h.view(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleProfile handles GET /api/profiles/{id}.
func (h *CloudHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, "api.profile", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(*p))
}

// HandlePublish handles POST /api/profiles.
func (h *CloudHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	const op = "api.publish"

	var req namedScores
	if err := decodeBody(r, namedSchema, &req); err != nil {
		fail(w, op, err)
		return
	}
	m, _ := category.FromRaw(req.Scores)
	p, err := h.deps.PublishProfile(r.Context(), model.Submission{Name: req.Name, Note: req.Note, Scores: m})
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(*p))
}

// HandleLeaderboard handles GET /api/leaderboard?limit=N.
func (h *CloudHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"

	n := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRank handles GET /api/leaderboard/{id}.
func (h *CloudHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.Rank(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, "api.get_rank", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
