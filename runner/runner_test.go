// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kmincut/jsonbench/benchjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeBench is a benchmark that prints the contents of its input as
// n_nodes, unless the input's name says to misbehave.
const fakeBench = `#!/bin/sh
case "$(basename "$1")" in
*nojson*)
	echo "usage: bench <graph>"
	exit 0 ;;
*status*)
	echo '{"n_nodes": 7}'
	exit 3 ;;
*crash*)
	echo "segmentation fault" >&2
	exit 139 ;;
*hang*)
	exec sleep 10 ;;
*orphan*)
	echo '{"n_nodes": 5}'
	sleep 3 &
	exit 0 ;;
esac
echo "Preprocessing: 0 edges erased"
echo "loading $1" >&2
echo "{\"n_nodes\": $(cat "$1"), \"gh_time_total\": 0.5}"
`

func setup(t *testing.T, inputs map[string]string) (exe, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake benchmark is a shell script")
	}
	dir = t.TempDir()
	exe = filepath.Join(dir, "bench")
	if err := os.WriteFile(exe, []byte(fakeBench), 0o777); err != nil {
		t.Fatal(err)
	}
	for name, content := range inputs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o666); err != nil {
			t.Fatal(err)
		}
	}
	return exe, dir
}

func TestRun(t *testing.T) {
	exe, dir := setup(t, map[string]string{
		"g10.mtx":    "10",
		"nojson.mtx": "",
		"status.mtx": "",
		"crash.mtx":  "",
	})
	r := &Runner{Executable: exe}
	ctx := context.Background()

	res := r.Run(ctx, filepath.Join(dir, "g10.mtx"))
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if v, _ := res.Record.Get("n_nodes"); v.String() != "10" {
		t.Errorf("n_nodes = %v, want 10", v)
	}
	if !strings.Contains(string(res.Stderr), "loading") {
		t.Errorf("stderr not captured: %q", res.Stderr)
	}

	res = r.Run(ctx, filepath.Join(dir, "nojson.mtx"))
	var pe *benchjson.ParseError
	if !errors.As(res.Err, &pe) || pe.Line != 0 || !strings.Contains(pe.Excerpt, "usage") {
		t.Errorf("no-JSON run: got %v, want *benchjson.ParseError with excerpt", res.Err)
	}

	res = r.Run(ctx, filepath.Join(dir, "status.mtx"))
	if res.Err != nil || res.ExitCode != 3 {
		t.Errorf("non-zero exit with record: got err %v, status %d", res.Err, res.ExitCode)
	}

	res = r.Run(ctx, filepath.Join(dir, "crash.mtx"))
	if !errors.As(res.Err, &pe) || res.ExitCode != 139 {
		t.Errorf("crash: got %v status %d, want *benchjson.ParseError status 139", res.Err, res.ExitCode)
	}
}

func TestRunExecError(t *testing.T) {
	_, dir := setup(t, nil)
	r := &Runner{Executable: filepath.Join(dir, "does-not-exist")}
	res := r.Run(context.Background(), "x")
	var ee *ExecError
	if !errors.As(res.Err, &ee) || ee.Input != "x" {
		t.Errorf("got %v, want *ExecError", res.Err)
	}
}

func TestRunTimeout(t *testing.T) {
	exe, dir := setup(t, map[string]string{"hang.mtx": ""})
	r := &Runner{Executable: exe, Timeout: 100 * time.Millisecond}
	start := time.Now()
	res := r.Run(context.Background(), filepath.Join(dir, "hang.mtx"))
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("got %v, want deadline exceeded", res.Err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("timed out run took %v", d)
	}
}

func TestRunLeftoverChild(t *testing.T) {
	// The benchmark exits but a background child keeps its standard
	// output open. The record printed before exiting is kept, with or
	// without a timeout.
	exe, dir := setup(t, map[string]string{"orphan.mtx": ""})
	for _, timeout := range []time.Duration{0, time.Minute} {
		r := &Runner{Executable: exe, Timeout: timeout}
		res := r.Run(context.Background(), filepath.Join(dir, "orphan.mtx"))
		if res.Err != nil {
			t.Errorf("timeout %v: %v", timeout, res.Err)
			continue
		}
		if v, _ := res.Record.Get("n_nodes"); v.String() != "5" {
			t.Errorf("timeout %v: n_nodes = %v, want 5", timeout, v)
		}
	}
}

func TestRunAll(t *testing.T) {
	exe, dir := setup(t, map[string]string{
		"a.mtx":      "10",
		"b.mtx":      "20",
		"nojson.mtx": "",
		"c.mtx":      "40",
	})
	core, logs := observer.New(zap.DebugLevel)
	r := &Runner{Executable: exe, Log: zap.New(core).Sugar()}

	var inputs []string
	for _, name := range []string{"a.mtx", "nojson.mtx", "b.mtx", "c.mtx"} {
		inputs = append(inputs, filepath.Join(dir, name))
	}
	recs, failed, err := r.RunAll(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, rec := range recs {
		v, _ := rec.Get("n_nodes")
		got = append(got, v.String())
	}
	if strings.Join(got, ",") != "10,20,40" {
		t.Errorf("records n_nodes = %v, want 10,20,40 in input order", got)
	}
	if len(failed) != 1 || failed[0].Input != inputs[1] {
		t.Errorf("failed = %+v, want the nojson input", failed)
	}

	if n := logs.FilterMessageSnippet("running ").Len(); n != 4 {
		t.Errorf("logged %d progress lines, want 4", n)
	}
	skips := logs.FilterMessage("skipping run").All()
	if len(skips) != 1 {
		t.Fatalf("logged %d skip diagnostics, want 1", len(skips))
	}
	if in := skips[0].ContextMap()["input"]; in != inputs[1] {
		t.Errorf("skip diagnostic names %v, want %s", in, inputs[1])
	}
}

func TestRunAllCanceled(t *testing.T) {
	exe, dir := setup(t, map[string]string{"a.mtx": "10"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Executable: exe}
	recs, _, err := r.RunAll(ctx, []string{filepath.Join(dir, "a.mtx")})
	if !errors.Is(err, context.Canceled) || len(recs) != 0 {
		t.Errorf("got %d records, err %v; want none and context.Canceled", len(recs), err)
	}
}
