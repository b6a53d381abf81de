// Package site serves the embedded single-page front end.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the front end to mux. Share and compare links land on the
// same page, which reads its state from the query string or fragment.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	h := NewRootHandler()
	mux.Handle("GET /", http.FileServer(FS()))
	mux.HandleFunc("GET /share", h.HandleIndex)
	mux.HandleFunc("GET /compare", h.HandleIndex)
}

// RootHandler serves the index page for deep links.
type RootHandler struct {
	index []byte
}

// NewRootHandler creates a root handler with the embedded index page loaded.
func NewRootHandler() *RootHandler {
	b, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		b = nil
	}
	return &RootHandler{index: b}
}

// HandleIndex writes the index page.
func (h *RootHandler) HandleIndex(w http.ResponseWriter, _ *http.Request) {
	if len(h.index) == 0 {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(h.index)
}
