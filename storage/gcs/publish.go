// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcs

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ParseURL splits a gs://bucket/prefix URL into its bucket and
// object name prefix. The prefix has no leading or trailing slash and
// may be empty.
func ParseURL(u string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(u, "gs://")
	if !ok {
		return "", "", fmt.Errorf("invalid GCS URL %q: want gs://bucket/prefix", u)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid GCS URL %q: missing bucket", u)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// A Publisher copies local files into an FS under a common prefix.
type Publisher struct {
	FS     FS
	Prefix string
}

// Publish uploads each of files to Prefix/<base name of file>, with
// metadata attached to every object. It returns the names of the
// objects written. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, files []string, metadata map[string]string) ([]string, error) {
	var names []string
	for _, file := range files {
		name := path.Join(p.Prefix, filepath.Base(file))
		if err := p.upload(ctx, file, name, metadata); err != nil {
			return names, fmt.Errorf("publishing %s: %w", file, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (p *Publisher) upload(ctx context.Context, file, name string, metadata map[string]string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := p.FS.NewWriter(ctx, name, metadata)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return w.CloseWithError(err)
	}
	return w.Close()
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
