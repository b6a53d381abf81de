package api

import (
	"net/http"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// UsersHandler serves the local comparison overlay.
type UsersHandler struct {
	deps interface {
		UserDependencies
		Score(m category.ScoreMap) int
	}
}

// NewUsersHandler creates a users handler.
func NewUsersHandler(deps Dependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

type userView struct {
	Name   string            `json:"name"`
	Scores category.ScoreMap `json:"scores"`
	Score  int               `json:"score"`
}

type namedScores struct {
	Name   string             `json:"name"`
	Note   string             `json:"note"`
	Scores map[string]float64 `json:"scores"`
}

// HandleList handles GET /api/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users := h.deps.Users(r.Context())
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userView{Name: u.Name, Scores: u.Scores, Score: h.deps.Score(u.Scores)})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAdd handles POST /api/users.
func (h *UsersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_user"

	var req namedScores
	if err := decodeBody(r, namedSchema, &req); err != nil {
		fail(w, op, err)
		return
	}
	m, _ := category.FromRaw(req.Scores)
	name, err := h.deps.AddUser(r.Context(), req.Name, m)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, userView{Name: name, Scores: m, Score: h.deps.Score(m)})
}

// HandleRemove handles DELETE /api/users[?name=]. Without a name the overlay is cleared.
func (h *UsersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_user"

	var err error
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		err = h.deps.RemoveUser(r.Context(), name)
	} else {
		err = h.deps.ClearUsers(r.Context())
	}
	if err != nil {
		fail(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
