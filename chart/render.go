// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/kmincut/jsonbench/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default figure geometry.
const (
	DefaultWidth  = 5 * vg.Inch
	DefaultHeight = 3 * vg.Inch
	DefaultDPI    = 500
)

// ErrNoData is returned for a series with no row where both x and y
// are present.
var ErrNoData = errors.New("no plottable points")

// A MissingColumnError reports that a chart reads a column the
// dataset does not have.
type MissingColumnError struct {
	Chart  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("chart %s: no column %q", e.Chart, e.Column)
}

// A Renderer draws charts into a directory.
type Renderer struct {
	// Dir is the absolute output directory.
	Dir string

	Width, Height vg.Length
	DPI           int
}

// NewRenderer returns a Renderer writing to dir with the default
// geometry. dir is resolved to an absolute path once and created if it
// does not exist.
func NewRenderer(dir string) (*Renderer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0777); err != nil {
		return nil, err
	}
	return &Renderer{Dir: abs, Width: DefaultWidth, Height: DefaultHeight, DPI: DefaultDPI}, nil
}

// An Outcome is the result of rendering one chart.
type Outcome struct {
	Spec Spec
	Path string // Output file, set even if Err != nil
	Err  error
}

// RenderAll renders each of specs from d. A failure of one chart does
// not prevent the others from being drawn.
func (r *Renderer) RenderAll(d *dataset.Dataset, specs []Spec) []Outcome {
	out := make([]Outcome, len(specs))
	for i, s := range specs {
		out[i] = Outcome{Spec: s, Path: filepath.Join(r.Dir, s.File)}
		out[i].Err = r.Render(d, s)
	}
	return out
}

// Render draws s from d and writes it to s.File in r.Dir.
func (r *Renderer) Render(d *dataset.Dataset, s Spec) error {
	for _, col := range s.Columns() {
		if !d.Has(col) {
			return &MissingColumnError{Chart: s.File, Column: col}
		}
	}
	pl, err := r.plot(d, s)
	if err != nil {
		return fmt.Errorf("chart %s: %w", s.File, err)
	}
	return r.write(pl, filepath.Join(r.Dir, s.File))
}

func (r *Renderer) plot(d *dataset.Dataset, s Spec) (*plot.Plot, error) {
	xc, _ := d.Column(s.X)
	xs, xok, err := xc.Floats()
	if err != nil {
		return nil, err
	}

	pl := plot.New()
	pl.Title.Text = s.Title
	pl.Title.TextStyle.Font.Size = 12
	pl.X.Label.Text = s.XLabel
	pl.Y.Label.Text = s.YLabel

	// White background with a light grid behind the data.
	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 0xdd}
	grid.Horizontal.Color = color.Gray{Y: 0xdd}
	pl.Add(grid)

	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Set1", 3)
	if err != nil {
		return nil, err
	}
	colors := pal.Colors()

	for i, se := range s.Series {
		yc, _ := d.Column(se.Column)
		ys, yok, err := yc.Floats()
		if err != nil {
			return nil, err
		}
		pts := aggregate(xs, xok, ys, yok)
		if len(pts) == 0 {
			return nil, fmt.Errorf("series %s: %w", se.Column, ErrNoData)
		}
		c := colors[i%len(colors)]

		if band := pts.band(); band != nil {
			poly, err := plotter.NewPolygon(band)
			if err != nil {
				return nil, err
			}
			poly.Color = fade(c)
			poly.LineStyle.Width = 0
			pl.Add(poly)
		}

		line, scatter, err := plotter.NewLinePoints(pts.means())
		if err != nil {
			return nil, err
		}
		line.Color = c
		line.Width = vg.Points(1.5)
		scatter.Color = c
		scatter.Shape = draw.CircleGlyph{}
		switch se.Marker {
		case Dot:
			scatter.Radius = vg.Points(1.5)
		default:
			scatter.Radius = vg.Points(3)
		}
		pl.Add(line, scatter)
		if s.Legend {
			pl.Legend.Add(se.Label, line, scatter)
		}
	}
	pl.Legend.Top = true
	pl.Legend.Left = true
	return pl, nil
}

func (r *Renderer) write(pl *plot.Plot, path string) (err error) {
	can := vgimg.NewWith(vgimg.UseWH(r.Width, r.Height), vgimg.UseDPI(r.DPI), vgimg.UseBackgroundColor(color.White))
	pl.Draw(draw.New(can))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = vgimg.PngCanvas{Canvas: can}.WriteTo(f)
	return err
}

// fade returns c at a quarter opacity, for uncertainty bands.
func fade(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0x40}
}

// A point is the aggregate of every y value observed at one x.
type point struct {
	x            float64
	mean, lo, hi float64
}

type points []point

// aggregate pairs xs with ys, dropping rows where either is missing
// or not finite, and reduces repeated x values to their mean and
// range. The result is sorted by x.
func aggregate(xs []float64, xok []bool, ys []float64, yok []bool) points {
	var px, py []float64
	for i := range xs {
		if !xok[i] || !yok[i] || !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) == 0 {
		return nil
	}

	t := new(table.Builder).Add("x", px).Add("y", py).Done()
	g := ggstat.Agg("x")(ggstat.AggMean("y"), ggstat.AggMin("y"), ggstat.AggMax("y")).F(t)
	at := table.Flatten(table.SortBy(g, "x"))

	ax := at.MustColumn("x").([]float64)
	mean := at.MustColumn("mean y").([]float64)
	lo := at.MustColumn("min y").([]float64)
	hi := at.MustColumn("max y").([]float64)
	pts := make(points, len(ax))
	for i := range pts {
		pts[i] = point{ax[i], mean[i], lo[i], hi[i]}
	}
	return pts
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (ps points) means() plotter.XYs {
	xys := make(plotter.XYs, len(ps))
	for i, p := range ps {
		xys[i].X, xys[i].Y = p.x, p.mean
	}
	return xys
}

// band returns the outline of the region between the minimum and
// maximum y at each x, or nil if every x has a single value.
func (ps points) band() plotter.XYs {
	spread := false
	for _, p := range ps {
		if p.lo != p.hi {
			spread = true
			break
		}
	}
	if !spread {
		return nil
	}
	xys := make(plotter.XYs, 0, 2*len(ps))
	for _, p := range ps {
		xys = append(xys, plotter.XY{X: p.x, Y: p.hi})
	}
	for i := len(ps) - 1; i >= 0; i-- {
		xys = append(xys, plotter.XY{X: ps[i].x, Y: ps[i].lo})
	}
	return xys
}
