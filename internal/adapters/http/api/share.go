package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/render/radar"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// ShareHandler serves share codes, comparisons and charts.
type ShareHandler struct {
	deps    Dependencies
	baseURL string
}

// NewShareHandler creates a share handler producing links under baseURL.
func NewShareHandler(deps Dependencies, baseURL string) *ShareHandler {
	return &ShareHandler{deps: deps, baseURL: baseURL}
}

type scoreShare struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}

type compareLink struct {
	IDs       []string `json:"ids"`
	Code      string   `json:"code"`
	URL       string   `json:"url"`
	ShortLink string   `json:"short_link"`
}

type compareResponse struct {
	compareLink
	Targets []model.Target `json:"targets"`
}

type decodeResponse struct {
	Scores category.ScoreMap `json:"scores"`
	Score  int               `json:"score"`
	IDs    []string          `json:"ids"`
}

func (h *ShareHandler) link(ids []string) compareLink {
	if len(ids) == 0 {
		return compareLink{IDs: []string{}}
	}
	code := share.ToCompareCode(ids)
	metrics.RecordShareCode("compare", "encode", code != "")
	return compareLink{
		IDs:       ids,
		Code:      code,
		URL:       share.BuildShareURL(h.baseURL+"/compare", ids),
		ShortLink: share.BuildShortLink(h.baseURL, ids),
	}
}

// HandleShare handles GET /api/share. With ids it links a comparison, otherwise
// it encodes the stored ratings.
func (h *ShareHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("ids"); raw != "" {
		writeJSON(w, http.StatusOK, h.link(share.ParseIDList(raw)))
		return
	}
	m := h.deps.Scores(r.Context())
	code := share.EncodeScores(m)
	metrics.RecordShareCode("scores", "encode", code != "")
	writeJSON(w, http.StatusOK, scoreShare{Code: code, URL: share.BuildScoreURL(h.baseURL+"/share", m)})
}

// HandleDecode handles GET /api/share/decode?d=&code=. Malformed input decodes
// to empty results.
func (h *ShareHandler) HandleDecode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m := share.DecodeScores(q.Get(share.ScoresParam))
	ids := share.FromCompareCode(q.Get("code"))
	if q.Get(share.ScoresParam) != "" {
		metrics.RecordShareCode("scores", "decode", len(m) > 0)
	}
	if q.Get("code") != "" {
		metrics.RecordShareCode("compare", "decode", len(ids) > 0)
	}
	writeJSON(w, http.StatusOK, decodeResponse{Scores: m, Score: h.deps.Score(m), IDs: ids})
}

// requestedIDs reads ids from compare=, code= or hash= in that order.
func requestedIDs(r *http.Request) []string {
	q := r.URL.Query()
	switch {
	case q.Get(share.CompareParam) != "":
		return share.ReadSharedIDs(r.URL.RawQuery)
	case q.Get("code") != "":
		return share.FromCompareCode(q.Get("code"))
	case q.Get("hash") != "":
		return share.ReadCodeFromHash(q.Get("hash"))
	case q.Get("ids") != "":
		return share.ParseIDList(q.Get("ids"))
	}
	return []string{}
}

// HandleCompare handles GET /api/compare.
func (h *ShareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	targets := h.deps.CompareTargets(r.Context(), requestedIDs(r))
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.ID)
	}
	writeJSON(w, http.StatusOK, compareResponse{compareLink: h.link(ids), Targets: targets})
}

// HandleCompareLink handles POST /api/compare/link with {"ids": [...]}.
func (h *ShareHandler) HandleCompareLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, nil, &req); err != nil {
		fail(w, "api.compare_link", err)
		return
	}
	writeJSON(w, http.StatusOK, h.link(share.NormalizeIDs(req.IDs)))
}

// HandleRadar handles GET /api/radar.svg?ids=a,b&self=1.
func (h *ShareHandler) HandleRadar(w http.ResponseWriter, r *http.Request) {
	self, _ := strconv.ParseBool(r.URL.Query().Get("self"))
	chart := h.deps.RadarChart(r.Context(), requestedIDs(r), self)

	var buf bytes.Buffer
	radar.Render(&buf, chart)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
