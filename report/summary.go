// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"github.com/kmincut/jsonbench/dataset"
	"github.com/kmincut/jsonbench/internal/texttab"
)

// A Summary holds descriptive statistics of one numeric column.
type Summary struct {
	Column string

	// N is the number of present cells.
	N int

	Mean, StdDev     float64
	Min, Median, Max float64
}

// Summarize computes a Summary for each numeric column of d that has
// at least one present cell, in column order.
func Summarize(d *dataset.Dataset) []Summary {
	var out []Summary
	for _, name := range d.Columns() {
		c, _ := d.Column(name)
		xs, present, err := c.Floats()
		if err != nil {
			// Text column.
			continue
		}
		var vals []float64
		for i, x := range xs {
			if present[i] {
				vals = append(vals, x)
			}
		}
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		s := stats.Sample{Xs: vals, Sorted: true}
		lo, hi := s.Bounds()
		sum := Summary{
			Column: name,
			N:      len(vals),
			Mean:   s.Mean(),
			Min:    lo,
			Median: s.Quantile(0.5),
			Max:    hi,
		}
		if len(vals) > 1 {
			sum.StdDev = s.StdDev()
		}
		out = append(out, sum)
	}
	return out
}

// FormatSummary writes sums to w as a text table.
func FormatSummary(w io.Writer, sums []Summary) error {
	var tab texttab.Table
	tab.Row().Cell("column")
	for _, h := range []string{"n", "mean", "std", "min", "median", "max"} {
		tab.Cell(h, texttab.Right)
	}
	for _, s := range sums {
		tab.Row().Cell(s.Column)
		tab.Cell(strconv.Itoa(s.N), texttab.Right)
		for _, x := range []float64{s.Mean, s.StdDev, s.Min, s.Median, s.Max} {
			tab.Cell(formatFloat(x), texttab.Right)
		}
	}
	return tab.Format(w)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 4, 64)
}
