// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out column-aligned text tables.
package texttab

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Row and Cell return the Table so callers can chain them to build up
// a row at once.
type Table struct {
	cells []cell
	cols  int

	curRow, curCol int
}

type cell struct {
	row, col   int
	value      string
	leftMargin string
	alignment  align
}

// A CellOption changes how one cell is laid out.
type CellOption func(c *cell)

// LeftMargin sets the text printed before a cell. The widest margin
// in a column applies to every cell of that column.
func LeftMargin(x string) CellOption {
	return func(c *cell) {
		c.leftMargin = x
	}
}

var (
	Left  CellOption = func(c *cell) { c.alignment = alignLeft }
	Right CellOption = func(c *cell) { c.alignment = alignRight }
)

type align int

const (
	alignLeft align = iota
	alignRight
)

func (a align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	if a == alignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// Row starts a new row in table t.
func (t *Table) Row() *Table {
	if len(t.cells) > 0 {
		t.curRow++
	}
	t.curCol = 0
	return t
}

// Cell adds a cell at the current row and column and moves to the
// next column. Cells after the first in a row have a one-space left
// margin unless an option says otherwise.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	lMargin := " "
	if t.curCol == 0 {
		lMargin = ""
	}
	t.cells = append(t.cells, cell{t.curRow, t.curCol, value, lMargin, alignLeft})
	for _, o := range opts {
		o(&t.cells[len(t.cells)-1])
	}
	t.curCol++
	if t.curCol > t.cols {
		t.cols = t.curCol
	}
	return t
}

// Format lays out table t and writes it to w. Trailing spaces are
// trimmed from every line.
func (t *Table) Format(w io.Writer) error {
	// Collect the widest margin and value of each column.
	lmargin := make([]int, t.cols)
	ws := make([]int, t.cols)
	for _, c := range t.cells {
		lmargin[c.col] = max(lmargin[c.col], utf8.RuneCountInString(c.leftMargin))
		ws[c.col] = max(ws[c.col], utf8.RuneCountInString(c.value))
	}

	sort.SliceStable(t.cells, func(i, j int) bool {
		if t.cells[i].row != t.cells[j].row {
			return t.cells[i].row < t.cells[j].row
		}
		return t.cells[i].col < t.cells[j].col
	})

	var line strings.Builder
	flush := func() error {
		_, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
		line.Reset()
		return err
	}
	row, col := 0, 0
	for _, c := range t.cells {
		for c.row > row {
			if err := flush(); err != nil {
				return err
			}
			row++
			col = 0
		}
		// Pad over any skipped columns.
		for ; col < c.col; col++ {
			line.WriteString(strings.Repeat(" ", lmargin[col]+ws[col]))
		}
		line.WriteString(alignRight.pad(c.leftMargin, lmargin[c.col]))
		line.WriteString(c.alignment.pad(c.value, ws[c.col]))
		col++
	}
	if len(t.cells) > 0 {
		return flush()
	}
	return nil
}
