// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset implements a column-oriented table of benchmark run
// records.
//
// A Dataset has one row per successful run and one column per
// distinct record key. Records are heterogeneous, so a row may have
// no value for some column; such cells hold a missing
// benchjson.Value rather than a made-up default.
//
// Datasets only ever grow columns after they are built. Existing
// rows are never removed and existing cells are never modified,
// except when a column is replaced wholesale with SetColumn.
package dataset

import (
	"fmt"

	"github.com/kmincut/jsonbench/benchjson"
)

// A Column is a named sequence of cells, one per row.
type Column struct {
	Name  string
	Cells []benchjson.Value
}

// Floats returns the numeric values of c. present[i] is false where
// c has a missing cell, in which case xs[i] is 0. If any cell is
// text, Floats returns a *TypeError.
func (c *Column) Floats() (xs []float64, present []bool, err error) {
	xs = make([]float64, len(c.Cells))
	present = make([]bool, len(c.Cells))
	for i, v := range c.Cells {
		switch v.Kind {
		case benchjson.Missing:
		case benchjson.Number:
			xs[i], present[i] = v.Num, true
		default:
			return nil, nil, &TypeError{Column: c.Name, Row: i, Value: v.Str}
		}
	}
	return xs, present, nil
}

// Numeric reports whether every present cell of c is a number.
func (c *Column) Numeric() bool {
	for _, v := range c.Cells {
		if v.Kind == benchjson.Text {
			return false
		}
	}
	return true
}

// A TypeError reports a text cell where a number was required.
type TypeError struct {
	Column string
	Row    int
	Value  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("column %q row %d: %q is not a number", e.Column, e.Row, e.Value)
}

// A Dataset is a table of benchmark results.
//
// The zero Dataset is an empty table with no rows and no columns.
type Dataset struct {
	cols []*Column
	pos  map[string]int
	rows int
}

// Len returns the number of rows in d.
func (d *Dataset) Len() int {
	return d.rows
}

// Columns returns the column names of d in order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil, false if d has no such
// column. The caller must not modify the returned column.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.pos[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Has reports whether d has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.pos[name]
	return ok
}

// Cell returns the value in row of the named column. It returns a
// missing Value if the column does not exist.
func (d *Dataset) Cell(row int, name string) benchjson.Value {
	c, ok := d.Column(name)
	if !ok {
		return benchjson.Value{}
	}
	return c.Cells[row]
}

// SetColumn adds a column called name holding cells, or replaces the
// cells of an existing column of that name in place, keeping its
// position. cells must have one entry per row of d, unless d is
// empty, in which case cells determines the number of rows.
func (d *Dataset) SetColumn(name string, cells []benchjson.Value) error {
	if (len(d.cols) > 0 || d.rows > 0) && len(cells) != d.rows {
		return fmt.Errorf("column %q has %d cells, dataset has %d rows", name, len(cells), d.rows)
	}
	if i, ok := d.pos[name]; ok {
		d.cols[i].Cells = cells
		return nil
	}
	if d.pos == nil {
		d.pos = make(map[string]int)
	}
	d.pos[name] = len(d.cols)
	d.cols = append(d.cols, &Column{Name: name, Cells: cells})
	d.rows = len(cells)
	return nil
}

// A Builder folds a sequence of records into a Dataset.
//
// Columns appear in the order their keys are first seen. Each call to
// Add appends a row; cells for keys the record lacks are missing.
type Builder struct {
	d Dataset
}

// Add appends rec as a new row.
func (b *Builder) Add(rec *benchjson.Record) {
	d := &b.d
	if d.pos == nil {
		d.pos = make(map[string]int)
	}
	for _, f := range rec.Fields {
		if _, ok := d.pos[f.Key]; ok {
			continue
		}
		// A new key: back-fill earlier rows.
		d.pos[f.Key] = len(d.cols)
		d.cols = append(d.cols, &Column{Name: f.Key, Cells: make([]benchjson.Value, d.rows)})
	}
	for _, c := range d.cols {
		v, _ := rec.Get(c.Name)
		c.Cells = append(c.Cells, v)
	}
	d.rows++
}

// Len returns the number of rows added so far.
func (b *Builder) Len() int {
	return b.d.rows
}

// Done returns the built Dataset and resets b.
func (b *Builder) Done() *Dataset {
	d := b.d
	b.d = Dataset{}
	return &d
}

// FromRecords builds a Dataset from recs in order.
func FromRecords(recs []*benchjson.Record) *Dataset {
	var b Builder
	for _, r := range recs {
		b.Add(r)
	}
	return b.Done()
}
