// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders line charts of benchmark datasets as PNG
// files.
package chart

// A Marker is the point glyph drawn at each data point of a series.
type Marker int

const (
	// Circle is a medium-sized circle.
	Circle Marker = iota
	// Dot is a small filled dot.
	Dot
)

// A Series is one line of a chart.
type Series struct {
	Column string // Dataset column plotted on the y axis
	Label  string // Legend label
	Marker Marker
}

// A Spec describes one chart.
type Spec struct {
	// File is the output file name, relative to the output
	// directory.
	File string

	Title  string
	X      string // Dataset column plotted on the x axis
	XLabel string
	YLabel string

	Series []Series

	// Legend enables the legend. It only makes sense with more than
	// one series.
	Legend bool
}

// Columns returns every dataset column the chart reads, x first.
func (s *Spec) Columns() []string {
	cols := []string{s.X}
	for _, se := range s.Series {
		cols = append(cols, se.Column)
	}
	return cols
}

// Specs returns the charts drawn for every benchmark dataset.
func Specs() []Spec {
	const (
		x      = "n_nodes"
		xLabel = "n nodes"
		yLabel = "time (s)"
	)
	return []Spec{
		{
			File:   "gh_avg_time_min_cut.png",
			Title:  "Time for single Minimum s-t Cut",
			X:      x,
			XLabel: xLabel,
			YLabel: yLabel,
			Series: []Series{{Column: "gh_avg_time_min_cut", Label: "gh_avg_time_min_cut"}},
		},
		{
			File:   "gh_time.png",
			Title:  "Gomory-Hu construction time",
			X:      x,
			XLabel: xLabel,
			YLabel: yLabel,
			Series: []Series{
				{Column: "gh_time_total", Label: "Total algorithm time", Marker: Circle},
				{Column: "gh_time_min_cut", Label: "Time spent on Minimum s-t Cuts", Marker: Dot},
			},
			Legend: true,
		},
		{
			File:   "min_k_cut_value_time.png",
			Title:  "Time for computing Minimum k-cut value on Gomory-Hu tree",
			X:      x,
			XLabel: xLabel,
			YLabel: yLabel,
			Series: []Series{{Column: "min_k_cut_value_time", Label: "min_k_cut_value_time"}},
		},
		{
			File:   "min_k_cut_map_time_total.png",
			Title:  "Time for computing Minimum k-cut map on Gomory-Hu tree",
			X:      x,
			XLabel: xLabel,
			YLabel: yLabel,
			Series: []Series{{Column: "min_k_cut_map_time_total", Label: "min_k_cut_map_time_total"}},
		},
	}
}
