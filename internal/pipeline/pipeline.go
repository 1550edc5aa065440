// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline ties the jsonbench stages together: run the
// benchmark (or load a saved table), persist the dataset, derive
// metrics and draw charts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/kmincut/jsonbench/benchjson"
	"github.com/kmincut/jsonbench/chart"
	"github.com/kmincut/jsonbench/dataset"
	"github.com/kmincut/jsonbench/derive"
	"github.com/kmincut/jsonbench/internal/hostinfo"
	"github.com/kmincut/jsonbench/report"
	"github.com/kmincut/jsonbench/runner"
	"github.com/kmincut/jsonbench/storage/db"
	"github.com/kmincut/jsonbench/storage/gcs"
	"go.uber.org/zap"
)

// An Invoker runs a benchmark over a list of inputs.
// *runner.Runner is the usual implementation.
type Invoker interface {
	RunAll(ctx context.Context, inputs []string) ([]*benchjson.Record, []runner.Result, error)
}

// Config configures one pipeline run.
type Config struct {
	// Executable is the benchmark to run. It may be empty if Input
	// is a table.
	Executable string

	// Input is a benchmark input file, a directory of them, or a
	// CSV table from an earlier run.
	Input string

	// Output is where the raw dataset is written as CSV. It is not
	// written when Input is a table.
	Output string

	// Timeout bounds each benchmark run. Zero means no limit.
	Timeout time.Duration

	// PlotDir is the chart output directory.
	PlotDir string

	// DPI overrides the chart resolution if positive.
	DPI int

	// Strict makes a failed derivation fatal. Otherwise it is
	// logged and only the charts that need the derived column
	// fail.
	Strict bool

	// HTML writes an index.html next to the charts.
	HTML bool

	// Stdout receives the dataset table. If nil, the table is not
	// printed.
	Stdout io.Writer

	Log *zap.SugaredLogger

	// Invoker runs the benchmark. If nil, a *runner.Runner for
	// Executable is used.
	Invoker Invoker

	// Archive, if non-nil, receives every freshly built dataset.
	// It is also where session inputs are loaded from.
	Archive *db.DB

	// Publisher, if non-nil, receives the CSV file and the
	// rendered artifacts.
	Publisher *gcs.Publisher

	// Host describes the machine. It is used in archived sessions,
	// published metadata and the HTML index.
	Host hostinfo.Info

	// Derivations and Charts default to derive.Default and
	// chart.Specs.
	Derivations []derive.Derivation
	Charts      []chart.Spec
}

// A Result summarizes a pipeline run.
type Result struct {
	Dataset *dataset.Dataset

	// Failed lists the runs that produced no record.
	Failed []runner.Result

	// DeriveErr is the derivation failure tolerated in lenient
	// mode.
	DeriveErr error

	// Charts has one outcome per chart, or is nil if the plot
	// directory could not be created.
	Charts []chart.Outcome

	// SessionID is the archive session the dataset was stored as
	// or loaded from, or 0.
	SessionID int64
}

// ErrNoExecutable is returned when benchmark inputs are given without
// a benchmark to run them.
var ErrNoExecutable = errors.New("no benchmark executable given")

// ErrNoArchive is returned for a session input when no archive is
// configured.
var ErrNoArchive = errors.New("no results archive given")

// Run runs the pipeline described by cfg.
//
// Run fails only if the input is invalid, the raw dataset cannot be
// written, ctx is done before all runs finish, or, in strict mode, a
// derivation fails. Failed runs, failed charts and archive or publish
// failures are logged and reported in the Result.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	in, err := benchjson.Resolve(cfg.Input)
	if err != nil {
		return nil, err
	}

	res := new(Result)
	var artifacts []string
	switch in.Kind {
	case benchjson.Table:
		d, err := dataset.LoadCSV(in.Path)
		if err != nil {
			return nil, &benchjson.InputError{Path: in.Path, Err: err}
		}
		log.Infof("loaded %d rows from %s", d.Len(), in.Path)
		res.Dataset = d

	case benchjson.Session:
		if cfg.Archive == nil {
			return nil, ErrNoArchive
		}
		s, d, err := cfg.Archive.Dataset(ctx, in.SessionID)
		if err != nil {
			return nil, &benchjson.InputError{Path: in.Path, Err: err}
		}
		log.Infof("loaded %d rows from session %d (%s on %s, %s)",
			d.Len(), s.ID, s.Executable, s.Input, s.Created.Format(time.RFC3339))
		res.Dataset = d
		res.SessionID = s.ID

	case benchjson.Files:
		for _, dir := range in.Skipped {
			log.Infof("skipping directory %s", dir)
		}
		inv := cfg.Invoker
		if inv == nil {
			if cfg.Executable == "" {
				return nil, ErrNoExecutable
			}
			inv = &runner.Runner{Executable: cfg.Executable, Timeout: cfg.Timeout, Log: log}
		}
		recs, failed, err := inv.RunAll(ctx, in.Paths)
		if err != nil {
			return nil, err
		}
		res.Failed = failed
		if len(failed) > 0 {
			log.Warnf("%d of %d runs produced no record", len(failed), len(in.Paths))
		}
		res.Dataset = dataset.FromRecords(recs)

		// The raw dataset goes to disk before anything else can
		// go wrong.
		if err := dataset.SaveCSV(cfg.Output, res.Dataset); err != nil {
			return nil, fmt.Errorf("writing dataset: %w", err)
		}
		log.Infof("wrote %d rows to %s", res.Dataset.Len(), cfg.Output)
		artifacts = append(artifacts, cfg.Output)

		if cfg.Archive != nil {
			res.SessionID = archive(ctx, cfg, res.Dataset, log)
		}
	}
	d := res.Dataset

	if cfg.Stdout != nil {
		if err := report.FormatTable(cfg.Stdout, d); err != nil {
			log.Warnf("printing dataset: %v", err)
		}
	}

	derivs := cfg.Derivations
	if derivs == nil {
		derivs = derive.Default()
	}
	if err := derive.Apply(d, derivs...); err != nil {
		if cfg.Strict {
			return res, fmt.Errorf("deriving metrics: %w", err)
		}
		log.Errorw("deriving metrics failed; dependent charts will be skipped", "error", err)
		res.DeriveErr = err
	}

	if cfg.Stdout != nil && d.Len() > 0 {
		fmt.Fprintln(cfg.Stdout)
		if err := report.FormatSummary(cfg.Stdout, report.Summarize(d)); err != nil {
			log.Warnf("printing summary: %v", err)
		}
	}

	specs := cfg.Charts
	if specs == nil {
		specs = chart.Specs()
	}
	r, err := chart.NewRenderer(cfg.PlotDir)
	if err != nil {
		log.Errorw("cannot create plot directory; no charts drawn", "dir", cfg.PlotDir, "error", err)
	} else {
		if cfg.DPI > 0 {
			r.DPI = cfg.DPI
		}
		res.Charts = r.RenderAll(d, specs)
		for _, o := range res.Charts {
			if o.Err != nil {
				log.Errorw("chart failed", "chart", o.Spec.File, "error", o.Err)
				continue
			}
			log.Infof("wrote %s", o.Path)
			artifacts = append(artifacts, o.Path)
		}
		if cfg.HTML {
			index := filepath.Join(r.Dir, "index.html")
			if err := report.SaveHTML(index, page(cfg, d, res.Charts)); err != nil {
				log.Errorw("writing HTML index failed", "error", err)
			} else {
				log.Infof("wrote %s", index)
				artifacts = append(artifacts, index)
			}
		}
	}

	if cfg.Publisher != nil && len(artifacts) > 0 {
		names, err := cfg.Publisher.Publish(ctx, artifacts, metadata(cfg, res))
		if err != nil {
			log.Errorw("publishing artifacts failed", "error", err, "published", len(names))
		} else {
			log.Infof("published %d files to %s", len(names), cfg.Publisher.Prefix)
		}
	}
	return res, nil
}

// archive stores d and returns the new session ID, or 0 on failure.
func archive(ctx context.Context, cfg *Config, d *dataset.Dataset, log *zap.SugaredLogger) int64 {
	s := &db.Session{
		Executable: cfg.Executable,
		Input:      cfg.Input,
		Host:       cfg.Host.String(),
	}
	if err := cfg.Archive.InsertDataset(ctx, s, d); err != nil {
		log.Errorw("archiving dataset failed", "error", err)
		return 0
	}
	log.Infof("archived dataset as session %d", s.ID)
	return s.ID
}

func page(cfg *Config, d *dataset.Dataset, outs []chart.Outcome) *report.Page {
	p := &report.Page{
		Title:   "jsonbench: " + filepath.Base(cfg.Input),
		Input:   cfg.Input,
		Host:    cfg.Host.String(),
		Rows:    d.Len(),
		Columns: d.Columns(),
		Summary: report.Summarize(d),
	}
	for _, o := range outs {
		link := report.ChartLink{File: o.Spec.File, Title: o.Spec.Title}
		if o.Err != nil {
			link.Err = o.Err.Error()
		}
		p.Charts = append(p.Charts, link)
	}
	return p
}

func metadata(cfg *Config, res *Result) map[string]string {
	m := map[string]string{
		"input": cfg.Input,
		"rows":  fmt.Sprint(res.Dataset.Len()),
	}
	if cfg.Executable != "" {
		m["executable"] = cfg.Executable
	}
	if res.SessionID != 0 {
		m["session"] = fmt.Sprint(res.SessionID)
	}
	for _, kv := range cfg.Host.Pairs() {
		if kv[1] != "" {
			m["host-"+kv[0]] = kv[1]
		}
	}
	return m
}
