// Package radar draws multi-series radar charts as SVG.
package radar

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

const (
	DefaultMax   = 10
	DefaultSize  = 360
	DefaultRings = 5

	defaultOpacity = 0.25
	legendRow      = 18
	labelGap       = 14
)

// Palette is used for series without a color.
var Palette = []string{"#f7931a", "#3b82f6", "#10b981", "#ef4444", "#8b5cf6", "#14b8a6"}

// Series is one filled polygon on the chart.
type Series struct {
	Name    string
	Values  []float64
	Color   string
	Opacity float64
}

// Chart describes what to draw. Zero values take the package defaults.
type Chart struct {
	Labels []string
	Series []Series
	Max    float64
	Size   int
	Rings  int
}

// SeriesFromScores lays a score map out in canonical category order.
func SeriesFromScores(name string, m category.ScoreMap, color string) Series {
	return Series{Name: name, Values: m.Values(), Color: color}
}

// ScoresChart returns a chart with one axis per category.
func ScoresChart(series ...Series) Chart {
	return Chart{Labels: category.Labels(), Series: series}
}

func (c *Chart) defaults() {
	if c.Max <= 0 {
		c.Max = DefaultMax
	}
	if c.Size <= 0 {
		c.Size = DefaultSize
	}
	if c.Rings <= 0 {
		c.Rings = DefaultRings
	}
	for i := range c.Series {
		if c.Series[i].Color == "" {
			c.Series[i].Color = Palette[i%len(Palette)]
		}
		if c.Series[i].Opacity <= 0 || c.Series[i].Opacity > 1 {
			c.Series[i].Opacity = defaultOpacity
		}
	}
}

type geometry struct {
	cx, cy, radius float64
	n              int
}

// angle of axis i; the first axis points straight up.
func (g geometry) angle(i int) float64 {
	return 2*math.Pi*float64(i)/float64(g.n) - math.Pi/2
}

func (g geometry) point(i int, r float64) (int, int) {
	a := g.angle(i)
	return int(math.Round(g.cx + r*math.Cos(a))), int(math.Round(g.cy + r*math.Sin(a)))
}

func clamp(v, limit float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// Render writes the chart to w.
func Render(w io.Writer, c Chart) {
	c.defaults()

	size := c.Size
	height := size + legendRow*len(c.Series)
	g := geometry{
		cx:     float64(size) / 2,
		cy:     float64(size) / 2,
		radius: float64(size)/2 - 3*labelGap,
		n:      len(c.Labels),
	}

	canvas := svg.New(w)
	canvas.Start(size, height)
	canvas.Title("Radar chart")
	canvas.Rect(0, 0, size, height, "fill:#ffffff")

	if g.n == 0 {
		canvas.End()
		return
	}

	canvas.Gstyle("fill:none;stroke:#d1d5db;stroke-width:1")
	for ring := 1; ring <= c.Rings; ring++ {
		r := g.radius * float64(ring) / float64(c.Rings)
		if g.n < 3 {
			canvas.Circle(int(g.cx), int(g.cy), int(math.Round(r)))
			continue
		}
		xs, ys := make([]int, g.n), make([]int, g.n)
		for i := 0; i < g.n; i++ {
			xs[i], ys[i] = g.point(i, r)
		}
		canvas.Polygon(xs, ys)
	}
	for i := 0; i < g.n; i++ {
		x, y := g.point(i, g.radius)
		canvas.Line(int(g.cx), int(g.cy), x, y)
	}
	canvas.Gend()

	canvas.Gstyle("font-family:sans-serif;font-size:11px;fill:#374151;text-anchor:middle")
	for i, label := range c.Labels {
		x, y := g.point(i, g.radius+labelGap)
		canvas.Text(x, y+4, label)
	}
	canvas.Gend()

	if g.n >= 3 {
		for _, s := range c.Series {
			xs, ys := make([]int, g.n), make([]int, g.n)
			for i := 0; i < g.n; i++ {
				var v float64
				if i < len(s.Values) {
					v = clamp(s.Values[i], c.Max)
				}
				xs[i], ys[i] = g.point(i, g.radius*v/c.Max)
			}
			canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:2", s.Color, s.Opacity, s.Color))
		}
	}

	canvas.Gstyle("font-family:sans-serif;font-size:12px;fill:#111827")
	for i, s := range c.Series {
		y := size + legendRow*i
		canvas.Rect(12, y, 10, 10, "fill:"+s.Color)
		canvas.Text(28, y+9, s.Name)
	}
	canvas.Gend()

	canvas.End()
}
