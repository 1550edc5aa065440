// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner invokes a benchmark executable once per input file
// and collects the measurement record each run prints.
//
// Runs are strictly sequential: a benchmark measures wall-clock time,
// and concurrent runs would perturb each other's measurements.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/kmincut/jsonbench/benchjson"
	"go.uber.org/zap"
)

// waitDelay bounds how long a run with a timeout waits for the
// output pipes to close after the benchmark process has exited or
// been killed.
const waitDelay = 2 * time.Second

// maxStderr is the number of bytes of standard error kept in
// diagnostics.
const maxStderr = 500

// A Runner runs a benchmark executable.
type Runner struct {
	// Executable is the path of the benchmark. It is run as
	// "Executable input" for each input.
	Executable string

	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration

	// Log receives progress and diagnostics. If nil, nothing is
	// logged.
	Log *zap.SugaredLogger
}

// A Result is the outcome of one run: either a Record or an error.
type Result struct {
	Input string

	// Record is the decoded measurement record, or nil if Err is
	// set.
	Record *benchjson.Record

	// Err is a *benchjson.ParseError if the run's output held no
	// usable record, or an *ExecError if the benchmark could not be
	// run to completion.
	Err error

	// ExitCode is the benchmark's exit status.
	ExitCode int

	// Stderr is the benchmark's standard error. It is only used
	// in diagnostics.
	Stderr []byte

	Elapsed time.Duration
}

// An ExecError reports that a benchmark could not be started or was
// stopped before it finished.
type ExecError struct {
	Input string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("running benchmark on %s: %v", e.Input, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func (r *Runner) log() *zap.SugaredLogger {
	if r.Log == nil {
		return zap.NewNop().Sugar()
	}
	return r.Log
}

// Run runs the benchmark on input and decodes the first line of its
// standard output that begins with '{'.
//
// The benchmark's exit status does not decide success: a run that
// exits non-zero but still printed a valid record yields that record.
func (r *Runner) Run(ctx context.Context, input string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Executable, input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Timeout > 0 {
		// Without a timeout Run waits for the output pipes to
		// close, even if the benchmark left a child holding them.
		cmd.WaitDelay = waitDelay
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{Input: input, Stderr: stderr.Bytes(), Elapsed: time.Since(start)}
	if err != nil {
		var ee *exec.ExitError
		switch {
		case ctx.Err() != nil:
			res.Err = &ExecError{Input: input, Err: ctx.Err()}
			return res
		case errors.As(err, &ee):
			res.ExitCode = ee.ExitCode()
		case errors.Is(err, exec.ErrWaitDelay):
			// The benchmark exited in time; a leftover child
			// kept its output open. What was printed still
			// counts.
		default:
			res.Err = &ExecError{Input: input, Err: err}
			return res
		}
	}

	res.Record, res.Err = benchjson.Parse(stdout.Bytes(), input)
	return res
}

// RunAll runs the benchmark on each of inputs in order. It returns
// the records of the successful runs, in input order, and the results
// of the failed runs. A failed run is logged and skipped.
//
// RunAll stops before starting the next run if ctx is done, and
// returns ctx.Err() along with whatever was collected so far.
func (r *Runner) RunAll(ctx context.Context, inputs []string) (recs []*benchjson.Record, failed []Result, err error) {
	log := r.log()
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return recs, failed, err
		}
		log.Infof("running %s on %s", r.Executable, input)
		res := r.Run(ctx, input)
		if res.Err != nil {
			r.report(res)
			failed = append(failed, res)
			continue
		}
		if res.ExitCode != 0 {
			log.Warnw("benchmark exited with non-zero status; keeping its record",
				"input", input, "status", res.ExitCode)
		}
		log.Debugw("run finished", "input", input, "elapsed", res.Elapsed, "fields", res.Record.Len())
		recs = append(recs, res.Record)
	}
	return recs, failed, nil
}

// report logs a failed run.
func (r *Runner) report(res Result) {
	kv := []interface{}{"input", res.Input, "error", res.Err}
	var pe *benchjson.ParseError
	if errors.As(res.Err, &pe) && pe.Excerpt != "" {
		kv = append(kv, "output", pe.Excerpt)
	}
	if res.ExitCode != 0 {
		kv = append(kv, "status", res.ExitCode)
	}
	if s := bytes.TrimSpace(res.Stderr); len(s) > 0 {
		if len(s) > maxStderr {
			s = append(s[:maxStderr:maxStderr], "..."...)
		}
		kv = append(kv, "stderr", string(s))
	}
	r.log().Warnw("skipping run", kv...)
}
