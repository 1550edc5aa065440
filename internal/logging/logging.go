// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the zap logger shared by the jsonbench
// packages.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config returns the logger configuration for level: human-readable
// console lines on stderr.
func Config(level zap.AtomicLevel) zap.Config {
	return zap.Config{
		Level:       level,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "M",
			LevelKey:       "L",
			TimeKey:        "T",
			NameKey:        "N",
			CallerKey:      zapcore.OmitKey,
			FunctionKey:    zapcore.OmitKey,
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// Level returns the level named by the LOG_LEVEL environment
// variable, or INFO if it is unset. verbose forces DEBUG. An invalid
// LOG_LEVEL also yields INFO, along with a non-nil error describing
// the problem.
func Level(verbose bool) (zap.AtomicLevel, error) {
	if verbose {
		return zap.NewAtomicLevelAt(zap.DebugLevel), nil
	}
	name, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return zap.NewAtomicLevelAt(zap.InfoLevel), nil
	}
	lvl, err := zap.ParseAtomicLevel(name)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel), fmt.Errorf("failed to parse log level, fallback to INFO: %w", err)
	}
	return lvl, nil
}

// New returns a logger writing to w, or to the process's standard
// error if w is nil.
func New(w io.Writer, verbose bool) (*zap.SugaredLogger, error) {
	lvl, lerr := Level(verbose)
	config := Config(lvl)

	var logger *zap.Logger
	if w == nil {
		var err error
		logger, err = config.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	} else {
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(config.EncoderConfig), zapcore.AddSync(w), lvl)
		logger = zap.New(core)
	}

	log := logger.Sugar()
	if lerr != nil {
		log.Warn(lerr)
	}
	return log, nil
}
