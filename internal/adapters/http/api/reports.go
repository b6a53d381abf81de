package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/export/pdf"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/notify"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// ReportsHandler serves the PDF export and report e-mails.
type ReportsHandler struct {
	deps   CompareDependencies
	logger logger.Logger
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(deps CompareDependencies, l logger.Logger) *ReportsHandler {
	return &ReportsHandler{deps: deps, logger: l}
}

type sendRequest struct {
	To           string `json:"to"`
	Name         string `json:"name"`
	ReportURL    string `json:"report_url"`
	ReportURLAlt string `json:"reportUrl"`
}

// HandlePDF handles GET /api/report.pdf?name=&benchmark=.
func (h *ReportsHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	const op = "api.report_pdf"

	q := r.URL.Query()
	rep, err := h.deps.Report(r.Context(), q.Get("name"), q.Get("benchmark"))
	if err != nil {
		fail(w, op, err)
		return
	}
	var buf bytes.Buffer
	if err := pdf.Render(&buf, rep); err != nil {
		fail(w, op, err)
		return
	}
	metrics.RecordReportGenerated("pdf")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName(rep.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn(r.Context(), "write report", logger.Error(WrapKind(op, ErrServe, err)))
	}
}

// HandleSend handles POST /api/send-report.
func (h *ReportsHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	const op = "api.send_report"

	var req sendRequest
	if err := decodeBody(r, nil, &req); err != nil {
		fail(w, op, err)
		return
	}
	if req.ReportURL == "" {
		req.ReportURL = req.ReportURLAlt
	}
	err := h.deps.SendReport(r.Context(), notify.Report{To: req.To, Name: req.Name, ReportURL: req.ReportURL})
	if err != nil {
		h.logger.Warn(r.Context(), "send report failed", logger.Error(err))
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
