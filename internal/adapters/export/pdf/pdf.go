// Package pdf renders the comparison report as a PDF document.
package pdf

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
)

const (
	marginLeft   = 14.0
	indentLeft   = 18.0
	topY         = 20.0
	pageBreakY   = 270.0
	textWidth    = 180.0
	lineHeight   = 6.0
	fontFamily   = "Helvetica"
	defaultBench = "Satoshi"
)

var whitespace = regexp.MustCompile(`\s+`)

// Report is the content of one exported checklist.
type Report struct {
	Name      string
	Score     int
	Benchmark string
	Gaps      []gaps.Item
	Blueprint benchmark.Blueprint
}

// FileName returns the download name for a candidate.
func FileName(name string) string {
	return whitespace.ReplaceAllString(name, "_") + "_satoshi_report.pdf"
}

// Option configures rendering.
type Option func(*fpdf.Fpdf)

// WithCompression toggles stream compression.
func WithCompression(on bool) Option {
	return func(doc *fpdf.Fpdf) { doc.SetCompression(on) }
}

// Render writes r as a PDF to w.
func Render(w io.Writer, r Report, opts ...Option) error {
	doc := build(r, opts...)
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

type writer struct {
	doc *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (p *writer) text(x float64, s string) {
	p.doc.Text(x, p.y, p.tr(s))
}

// wrapped prints s split to the text width and breaks the page past the bottom margin.
func (p *writer) wrapped(x float64, s string) {
	lines := p.doc.SplitText(p.tr(s), textWidth)
	for _, l := range lines {
		p.doc.Text(x, p.y, l)
		p.y += lineHeight
	}
	if p.y > pageBreakY {
		p.doc.AddPage()
		p.y = topY
	}
}

func gapLine(g gaps.Item) string {
	return fmt.Sprintf("%s: need +%s (you %s/10 -> %s/10) - %s",
		g.Metric.Label(), num(g.Delta), num(g.UserHas), num(g.NeededToReach), g.Detail)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func build(r Report, opts ...Option) *fpdf.Fpdf {
	bench := r.Benchmark
	if bench == "" {
		bench = defaultBench
	}

	doc := fpdf.New("P", "mm", "A4", "")
	for _, opt := range opts {
		opt(doc)
	}
	doc.SetTitle(bench+" Comparison Report", true)
	doc.AddPage()

	p := &writer{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor(""), y: topY}

	doc.SetFont(fontFamily, "", 18)
	p.text(marginLeft, bench+" Comparison Report")
	p.y += 10

	doc.SetFont(fontFamily, "", 14)
	p.text(marginLeft, "Candidate: "+r.Name)
	p.y += 8
	p.text(marginLeft, fmt.Sprintf("%s Score: %d/100", bench, r.Score))
	p.y += 12

	doc.SetFont(fontFamily, "", 16)
	p.text(marginLeft, fmt.Sprintf("Gap Checklist (vs %s)", bench))
	p.y += 8
	doc.SetFont(fontFamily, "", 11)

	if len(r.Gaps) == 0 {
		p.text(marginLeft, fmt.Sprintf("You already meet %s-level targets. Incredible!", bench))
		p.y += 10
	} else {
		for _, g := range r.Gaps {
			p.wrapped(marginLeft, gapLine(g))
		}
	}

	p.y += 10
	doc.SetFont(fontFamily, "", 16)
	p.text(marginLeft, "Benchmark Qualifications (detailed)")
	p.y += 8

	for _, name := range r.Blueprint.Names() {
		doc.SetFont(fontFamily, "B", 11)
		p.text(marginLeft, name)
		p.y += lineHeight
		doc.SetFont(fontFamily, "", 11)

		tasks := r.Blueprint[name]
		for _, c := range category.All() {
			list, ok := tasks[c]
			if !ok {
				continue
			}
			p.wrapped(indentLeft, c.Label()+": "+strings.Join(list, "; "))
		}
		p.y += lineHeight
	}
	return doc
}
