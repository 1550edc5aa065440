// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kmincut/jsonbench/benchjson"
)

// WriteCSV writes d to w as comma-separated values. The first record
// is the column names; each following record is one row. Missing
// cells are written as empty fields and numbers are written with the
// literal they were read from.
func WriteCSV(w io.Writer, d *Dataset) error {
	csvw := csv.NewWriter(w)
	if err := csvw.Write(d.Columns()); err != nil {
		return err
	}
	row := make([]string, len(d.cols))
	for i := 0; i < d.rows; i++ {
		for j, c := range d.cols {
			row[j] = c.Cells[i].String()
		}
		if err := csvw.Write(row); err != nil {
			return err
		}
	}
	csvw.Flush()
	return csvw.Error()
}

// SaveCSV writes d to the named file, creating or truncating it.
func SaveCSV(path string, d *Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, d)
}

// ReadCSV reads a table written by WriteCSV, or any CSV file whose
// first record is a header.
//
// Column types are inferred from their contents: a column in which
// every non-empty field parses as a number is numeric, and any other
// column is text. Empty fields are missing cells. All records must
// have as many fields as the header.
func ReadCSV(r io.Reader) (*Dataset, error) {
	csvr := csv.NewReader(r)
	header, err := csvr.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV input: missing header")
	}
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q in CSV header", name)
		}
		seen[name] = true
	}

	fields := make([][]string, len(header))
	for {
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, f := range rec {
			fields[i] = append(fields[i], f)
		}
	}

	var d Dataset
	for i, name := range header {
		if err := d.SetColumn(name, inferColumn(fields[i])); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// LoadCSV reads the named CSV file.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// inferColumn converts the fields of one CSV column to cells.
func inferColumn(fields []string) []benchjson.Value {
	cells := make([]benchjson.Value, len(fields))
	numeric := true
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			numeric = false
			break
		}
	}
	for i, f := range fields {
		switch {
		case f == "":
		case numeric:
			cells[i], _ = benchjson.ParseNumber(f)
		default:
			cells[i] = benchjson.TextValue(f)
		}
	}
	return cells
}
