// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report formats benchmark datasets for people: as text
// tables on a terminal and as an HTML page next to the charts.
package report

import (
	"io"
	"strconv"

	"github.com/kmincut/jsonbench/dataset"
	"github.com/kmincut/jsonbench/internal/texttab"
)

// missing is how a missing cell is printed.
const missing = "NaN"

// FormatTable writes d to w as a text table: a header of column
// names followed by one line per row, prefixed with the row index.
// Numeric columns are right-aligned. A dataset with no columns is
// printed as a one-line summary.
func FormatTable(w io.Writer, d *dataset.Dataset) error {
	names := d.Columns()
	if len(names) == 0 {
		_, err := io.WriteString(w, "Empty dataset: "+strconv.Itoa(d.Len())+" rows, no columns\n")
		return err
	}

	cols := make([]*dataset.Column, len(names))
	align := make([]texttab.CellOption, len(names))
	for i, name := range names {
		cols[i], _ = d.Column(name)
		align[i] = texttab.Left
		if cols[i].Numeric() {
			align[i] = texttab.Right
		}
	}

	var tab texttab.Table
	tab.Row().Cell("")
	for i, name := range names {
		tab.Cell(name, align[i])
	}
	for r := 0; r < d.Len(); r++ {
		tab.Row().Cell(strconv.Itoa(r))
		for i, c := range cols {
			s := missing
			if v := c.Cells[r]; !v.IsMissing() {
				s = v.String()
			}
			tab.Cell(s, align[i])
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n["+strconv.Itoa(d.Len())+" rows x "+strconv.Itoa(len(names))+" columns]\n")
	return err
}
