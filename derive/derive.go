// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package derive computes secondary metrics as new columns of a
// dataset.Dataset.
//
// A Derivation reads existing columns and produces one column. Applying
// a Derivation whose output column already exists recomputes the
// column in place, so derivation can be repeated on a Dataset loaded
// from a CSV file that already holds derived columns.
package derive

import (
	"errors"
	"fmt"

	"github.com/kmincut/jsonbench/benchjson"
	"github.com/kmincut/jsonbench/dataset"
)

// A Derivation computes one column from other columns of a Dataset.
type Derivation interface {
	// Column returns the name of the column the derivation produces.
	Column() string

	// Derive computes the cells of the new column. It must not
	// modify d.
	Derive(d *dataset.Dataset) ([]benchjson.Value, error)
}

// A MissingColumnError reports that a derivation needs a column the
// Dataset does not have.
type MissingColumnError struct {
	Derived string // Column being derived
	Column  string // Missing source column
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("deriving %s: no column %q", e.Derived, e.Column)
}

// Ratio derives Name = Num / Den per row.
//
// A result cell is missing where either source cell is missing or
// where the denominator is zero. A text cell in either source column
// is a *dataset.TypeError.
type Ratio struct {
	Name     string
	Num, Den string
}

func (r Ratio) Column() string { return r.Name }

func (r Ratio) Derive(d *dataset.Dataset) ([]benchjson.Value, error) {
	return binary(d, r.Name, r.Num, r.Den, func(x, y float64) (float64, bool) {
		if y == 0 {
			return 0, false
		}
		return x / y, true
	})
}

// binary computes name = op(left, right) elementwise. op reports false
// to leave the result cell missing.
func binary(d *dataset.Dataset, name, left, right string, op func(x, y float64) (float64, bool)) ([]benchjson.Value, error) {
	var srcs [2]*dataset.Column
	for i, col := range []string{left, right} {
		c, ok := d.Column(col)
		if !ok {
			return nil, &MissingColumnError{Derived: name, Column: col}
		}
		srcs[i] = c
	}
	xs, xok, err := srcs[0].Floats()
	if err != nil {
		return nil, fmt.Errorf("deriving %s: %w", name, err)
	}
	ys, yok, err := srcs[1].Floats()
	if err != nil {
		return nil, fmt.Errorf("deriving %s: %w", name, err)
	}

	out := make([]benchjson.Value, d.Len())
	for i := range out {
		if !xok[i] || !yok[i] {
			continue
		}
		if z, ok := op(xs[i], ys[i]); ok {
			out[i] = benchjson.NumberValue(z)
		}
	}
	return out, nil
}

// Apply applies derivs to d in order. Each derivation either adds (or
// replaces) its whole column or leaves d unchanged; a failed
// derivation does not stop later ones, since they may not depend on
// it. The returned error joins the errors of every failed derivation.
func Apply(d *dataset.Dataset, derivs ...Derivation) error {
	var errs []error
	for _, dv := range derivs {
		cells, err := dv.Derive(d)
		if err == nil {
			err = d.SetColumn(dv.Column(), cells)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Default returns the derivations applied to every benchmark Dataset.
func Default() []Derivation {
	return []Derivation{
		Ratio{Name: "gh_avg_time_min_cut", Num: "gh_time_min_cut", Den: "n_nodes"},
	}
}
