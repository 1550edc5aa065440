// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchjson

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mtx", "a.mtx", "c.mtx"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o666); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o777); err != nil {
		t.Fatal(err)
	}

	in, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"), filepath.Join(dir, "c.mtx")}
	if in.Kind != Files || !reflect.DeepEqual(in.Paths, want) {
		t.Errorf("Resolve(dir) = %v %v, want Files %v", in.Kind, in.Paths, want)
	}
	if !reflect.DeepEqual(in.Skipped, []string{filepath.Join(dir, "sub")}) {
		t.Errorf("Skipped = %v", in.Skipped)
	}

	file := filepath.Join(dir, "a.mtx")
	in, err = Resolve(file)
	if err != nil {
		t.Fatal(err)
	}
	if in.Kind != Files || !reflect.DeepEqual(in.Paths, []string{file}) {
		t.Errorf("Resolve(file) = %v %v", in.Kind, in.Paths)
	}

	// Tables are recognized by name only.
	in, err = Resolve(filepath.Join(dir, "old.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if in.Kind != Table || len(in.Paths) != 0 {
		t.Errorf("Resolve(csv) = %v %v, want Table", in.Kind, in.Paths)
	}

	empty := filepath.Join(dir, "sub")
	in, err = Resolve(empty)
	if err != nil {
		t.Fatal(err)
	}
	if in.Paths == nil || len(in.Paths) != 0 {
		t.Errorf("Resolve(empty dir) = %#v, want empty non-nil Paths", in.Paths)
	}

	_, err = Resolve(filepath.Join(dir, "missing"))
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want *InputError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("InputError does not wrap fs.ErrNotExist: %v", err)
	}

	// Archived sessions are named by ID.
	in, err = Resolve("db:12")
	if err != nil {
		t.Fatal(err)
	}
	if in.Kind != Session || in.SessionID != 12 {
		t.Errorf("Resolve(db:12) = %v %d, want Session 12", in.Kind, in.SessionID)
	}
	for _, bad := range []string{"db:", "db:x", "db:0", "db:-3"} {
		if _, err := Resolve(bad); !errors.As(err, &ie) {
			t.Errorf("Resolve(%q) = %v, want *InputError", bad, err)
		}
	}
}
