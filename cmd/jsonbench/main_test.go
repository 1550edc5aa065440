// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kmincut/jsonbench/benchjson"
	"github.com/kmincut/jsonbench/dataset"
)

// catBench writes a benchmark that prints its input file.
func catBench(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script benchmarks need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "bench")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho \"reading $1\"\ncat \"$1\"\n"), 0o777); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeInputs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "graphs")
	if err := os.Mkdir(dir, 0o777); err != nil {
		t.Fatal(err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o666); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

var graphs = map[string]string{
	"g1.txt": `{"n_nodes": 10, "gh_time_total": 1.0, "gh_time_min_cut": 0.5, "min_k_cut_value_time": 0.01, "min_k_cut_map_time_total": 0.02}` + "\n",
	"g2.txt": `{"n_nodes": 20, "gh_time_total": 1.5, "gh_time_min_cut": 0.5, "min_k_cut_value_time": 0.02, "min_k_cut_map_time_total": 0.03}` + "\n",
	"g3.txt": "no measurements\n",
}

func TestUsage(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
	}{
		{"no input", []string{"./bench"}},
		{"no benchmark", []string{"-i", "graphs"}},
		{"extra argument", []string{"./bench", "extra", "-i", "graphs"}},
		{"bad flag", []string{"-nope"}},
		{"bad dpi", []string{"-dpi", "0", "./bench", "-i", "graphs"}},
		{"session without archive", []string{"-i", "db:1"}},
		{"sessions without archive", []string{"-sessions"}},
		{"sessions and delete", []string{"-db", "sqlite3::memory:", "-sessions", "-delete", "1"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr strings.Builder
			err := jsonbench(&stdout, &stderr, test.args)
			var ue *usageError
			if !errors.As(err, &ue) {
				t.Fatalf("err = %v, want usage error", err)
			}
			if !strings.Contains(stderr.String(), "Usage: jsonbench") {
				t.Errorf("no usage message in stderr:\n%s", stderr.String())
			}
		})
	}
}

func TestInvalidInput(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr strings.Builder
	err := jsonbench(&stdout, &stderr, []string{"./bench", "-i", filepath.Join(out, "missing"), "-o", filepath.Join(out, "out.csv")})
	var ie *benchjson.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InputError", err)
	}
	if _, err := os.Stat(filepath.Join(out, "out.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output written for invalid input")
	}
}

func TestInvalidInputCreatesNoArchive(t *testing.T) {
	out := t.TempDir()
	archive := filepath.Join(out, "archive.db")
	var stdout, stderr strings.Builder
	err := jsonbench(&stdout, &stderr, []string{"./bench", "-i", filepath.Join(out, "missing"), "-db", "sqlite3:" + archive})
	var ie *benchjson.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InputError", err)
	}
	if _, err := os.Stat(archive); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive created for invalid input")
	}
}

func TestRun(t *testing.T) {
	bench := catBench(t)
	input := writeInputs(t, graphs)
	out := t.TempDir()
	csv := filepath.Join(out, "out.csv")
	plots := filepath.Join(out, "plots")
	db := "sqlite3:" + filepath.Join(out, "archive.db")

	var stdout, stderr strings.Builder
	err := jsonbench(&stdout, &stderr, []string{"-dpi", "20", bench, "-i", input, "-output", csv, "-plots", plots, "-db", db, "-html"})
	if err != nil {
		t.Fatalf("%v\nstderr:\n%s", err, stderr.String())
	}

	d, err := dataset.LoadCSV(csv)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Errorf("got %d rows, want 2", d.Len())
	}
	for _, name := range []string{"gh_avg_time_min_cut.png", "gh_time.png", "min_k_cut_value_time.png", "min_k_cut_map_time_total.png", "index.html"} {
		if _, err := os.Stat(filepath.Join(plots, name)); err != nil {
			t.Error(err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "archive.db")); err != nil {
		t.Errorf("archive not created: %v", err)
	}
	if !strings.Contains(stdout.String(), "[2 rows x 5 columns]") {
		t.Errorf("stdout:\n%s", stdout.String())
	}
	// The run without a record is reported, not fatal.
	if !strings.Contains(stderr.String(), "g3.txt") {
		t.Errorf("failed run not logged:\n%s", stderr.String())
	}
}

func TestTableInput(t *testing.T) {
	out := t.TempDir()
	table := filepath.Join(out, "saved.csv")
	const data = "n_nodes,gh_time_total,gh_time_min_cut,min_k_cut_value_time,min_k_cut_map_time_total\n" +
		"10,1,0.5,0.01,0.02\n"
	if err := os.WriteFile(table, []byte(data), 0o666); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JSONBENCH_PLOTS", filepath.Join(out, "env-plots"))
	t.Setenv("JSONBENCH_DPI", "20")

	// No benchmark is needed for a saved table.
	var stdout, stderr strings.Builder
	if err := jsonbench(&stdout, &stderr, []string{"-q", "-i", table, "-o", filepath.Join(out, "out.csv")}); err != nil {
		t.Fatalf("%v\nstderr:\n%s", err, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("-q printed:\n%s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(out, "env-plots", "gh_time.png")); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(out, "out.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("table input re-written")
	}
}

func TestStrict(t *testing.T) {
	bench := catBench(t)
	input := writeInputs(t, map[string]string{"g.txt": `{"gh_time_min_cut": 0.5}`})
	out := t.TempDir()
	args := []string{bench, "-i", input, "-o", filepath.Join(out, "out.csv"), "-plots", filepath.Join(out, "plots"), "-dpi", "20", "-q"}

	var stdout, stderr strings.Builder
	if err := jsonbench(&stdout, &stderr, args); err != nil {
		t.Errorf("lenient: %v", err)
	}
	if err := jsonbench(&stdout, &stderr, append(args, "-strict")); err == nil {
		t.Errorf("strict: no error for missing n_nodes")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("JSONBENCH_X", "7")
	t.Setenv("JSONBENCH_BAD", "seven")
	t.Setenv("JSONBENCH_D", "1m30s")
	if got := StringEnv("JSONBENCH_X", "d"); got != "7" {
		t.Errorf("StringEnv = %q", got)
	}
	if got := StringEnv("JSONBENCH_UNSET", "d"); got != "d" {
		t.Errorf("StringEnv(unset) = %q", got)
	}
	if got := IntEnv("JSONBENCH_X", 1); got != 7 {
		t.Errorf("IntEnv = %d", got)
	}
	if got := IntEnv("JSONBENCH_BAD", 1); got != 1 {
		t.Errorf("IntEnv(bad) = %d", got)
	}
	if got := DurationEnv("JSONBENCH_D", 0); got != 90*time.Second {
		t.Errorf("DurationEnv = %v", got)
	}
	if got := DurationEnv("JSONBENCH_BAD", time.Second); got != time.Second {
		t.Errorf("DurationEnv(bad) = %v", got)
	}
}

func TestSessions(t *testing.T) {
	bench := catBench(t)
	input := writeInputs(t, graphs)
	out := t.TempDir()
	db := "sqlite3:" + filepath.Join(out, "archive.db")
	run := func(args ...string) string {
		t.Helper()
		var stdout, stderr strings.Builder
		if err := jsonbench(&stdout, &stderr, args); err != nil {
			t.Fatalf("jsonbench %v: %v\nstderr:\n%s", args, err, stderr.String())
		}
		return stdout.String()
	}

	run(bench, "-i", input, "-o", filepath.Join(out, "out.csv"), "-plots", filepath.Join(out, "plots"), "-dpi", "20", "-q", "-db", db)

	list := run("-db", db, "-sessions")
	if !strings.Contains(list, input) || !strings.Contains(list, bench) {
		t.Errorf("-sessions does not show the run:\n%s", list)
	}

	// Chart the archived table again, without the benchmark.
	plots := filepath.Join(out, "again")
	table := run("-i", "db:1", "-db", db, "-plots", plots, "-dpi", "20")
	if !strings.Contains(table, "[2 rows x 5 columns]") {
		t.Errorf("db:1 table:\n%s", table)
	}
	if _, err := os.Stat(filepath.Join(plots, "gh_time.png")); err != nil {
		t.Error(err)
	}

	if got := run("-db", db, "-delete", "1"); got != "deleted session 1\n" {
		t.Errorf("-delete printed %q", got)
	}
	if got := run("-db", db, "-sessions"); got != "no sessions\n" {
		t.Errorf("-sessions after delete printed %q", got)
	}

	var stdout, stderr strings.Builder
	if err := jsonbench(&stdout, &stderr, []string{"-db", db, "-delete", "1"}); err == nil {
		t.Errorf("deleting a missing session succeeded")
	}
}
