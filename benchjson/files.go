// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchjson

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TableExt is the file extension of a saved results table. An input
// path with this extension is loaded instead of being run.
const TableExt = ".csv"

// SessionPrefix introduces an input naming a session in the results
// archive, as in "db:12".
const SessionPrefix = "db:"

// An InputKind says what an input path refers to.
type InputKind int

const (
	// Files is a list of input files to run the benchmark on.
	Files InputKind = iota
	// Table is a previously saved results table.
	Table
	// Session is a dataset stored in the results archive.
	Session
)

// Inputs is the resolved form of an input path.
type Inputs struct {
	Kind InputKind

	// Path is the path as given.
	Path string

	// Paths is the list of input files for Kind == Files, in the
	// order the benchmark should be run on them.
	Paths []string

	// Skipped lists the subdirectories of a directory input. They
	// are not run.
	Skipped []string

	// SessionID is the archive session for Kind == Session.
	SessionID int64
}

// An InputError reports an input path that is neither a results
// table, a file, nor a directory.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input file or directory %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Resolve classifies path.
//
// A path of the form "db:<id>" is a Session. A path ending in TableExt is a Table, whether or not it exists
// (loading it reports any error). Otherwise an existing file is run on
// its own, and an existing directory is run on each of its direct
// entries in directory-listing order. Subdirectories are not entered.
// Any other path is an *InputError.
func Resolve(path string) (*Inputs, error) {
	if id, ok := strings.CutPrefix(path, SessionPrefix); ok {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			return nil, &InputError{path, fmt.Errorf("bad session ID %q", id)}
		}
		return &Inputs{Kind: Session, Path: path, SessionID: n}, nil
	}
	if strings.HasSuffix(path, TableExt) {
		return &Inputs{Kind: Table, Path: path}, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, &InputError{path, err}
	}
	switch {
	case fi.Mode().IsRegular():
		return &Inputs{Kind: Files, Path: path, Paths: []string{path}}, nil
	case fi.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, &InputError{path, err}
		}
		in := &Inputs{Kind: Files, Path: path, Paths: []string{}}
		for _, e := range entries {
			p := filepath.Join(path, e.Name())
			if e.IsDir() {
				in.Skipped = append(in.Skipped, p)
				continue
			}
			in.Paths = append(in.Paths, p)
		}
		return in, nil
	}
	return nil, &InputError{path, fmt.Errorf("not a regular file or directory")}
}
