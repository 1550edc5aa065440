// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs publishes benchmark artifacts to Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// An FS is a write-only object store.
type FS interface {
	// NewWriter returns a Writer for a object named name, with
	// the given metadata attached.
	NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error)
}

// A Writer writes one object. The object is only visible once Close
// returns nil.
type Writer interface {
	io.Writer
	// Close finishes the object.
	Close() error
	// CloseWithError abandons the object.
	CloseWithError(err error) error
}

// bucketFS is an FS backed by a GCS bucket.
type bucketFS struct {
	bucket *storage.BucketHandle
}

// NewFS returns an FS writing to the named bucket. With no options,
// the client authenticates with the application default credentials.
func NewFS(ctx context.Context, bucketName string, opts ...option.ClientOption) (FS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &bucketFS{client.Bucket(bucketName)}, nil
}

// DefaultOptions returns client options that authenticate with the
// application default credentials, scoped to reading and writing
// objects.
func DefaultOptions(ctx context.Context) ([]option.ClientOption, error) {
	ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, fmt.Errorf("finding default credentials: %w", err)
	}
	return []option.ClientOption{option.WithTokenSource(ts)}, nil
}

func (fs *bucketFS) NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := fs.bucket.Object(name).NewWriter(ctx)
	w.ObjectAttrs.Metadata = metadata
	w.ObjectAttrs.ContentType = contentType(name)
	return &objectWriter{w, cancel}, nil
}

type objectWriter struct {
	*storage.Writer
	cancel context.CancelFunc
}

func (w *objectWriter) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

// CloseWithError cancels the upload. Cancelling the writer's context
// before Close discards the object.
func (w *objectWriter) CloseWithError(err error) error {
	w.cancel()
	w.Writer.Close()
	return err
}

// MemFS is an in-memory FS, for tests.
type MemFS struct {
	mu      sync.Mutex
	objects map[string]*memObject
}

type memObject struct {
	Data     []byte
	Metadata map[string]string
}

// NewMemFS returns an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{objects: make(map[string]*memObject)}
}

// Names returns the names of the objects in fs, sorted.
func (fs *MemFS) Names() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var names []string
	for name := range fs.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Object returns the content and metadata of the named object.
func (fs *MemFS) Object(name string) (data []byte, metadata map[string]string, ok bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	o, ok := fs.objects[name]
	if !ok {
		return nil, nil, false
	}
	return o.Data, o.Metadata, true
}

func (fs *MemFS) NewWriter(_ context.Context, name string, metadata map[string]string) (Writer, error) {
	if strings.HasPrefix(name, "/") {
		return nil, fmt.Errorf("invalid object name %q", name)
	}
	return &memWriter{fs: fs, name: name, metadata: metadata}, nil
}

type memWriter struct {
	fs       *MemFS
	name     string
	metadata map[string]string
	buf      bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.objects[w.name] = &memObject{Data: w.buf.Bytes(), Metadata: w.metadata}
	return nil
}

func (w *memWriter) CloseWithError(err error) error {
	return err
}
