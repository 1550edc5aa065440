// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kmincut/jsonbench/internal/texttab"
	"github.com/kmincut/jsonbench/storage/db"
)

// manageSessions lists the sessions of the dbSpec archive, or deletes
// session del from it.
func manageSessions(ctx context.Context, w io.Writer, dbSpec string, list bool, del int64) error {
	archive, err := openArchive(dbSpec)
	if err != nil {
		return err
	}
	defer archive.Close()

	if !list {
		if err := archive.DeleteSession(ctx, del); err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted session %d\n", del)
		return nil
	}
	sessions, err := archive.ListSessions(ctx, 0)
	if err != nil {
		return err
	}
	return formatSessions(w, sessions)
}

// formatSessions writes one line per session, newest first.
func formatSessions(w io.Writer, sessions []*db.Session) error {
	if len(sessions) == 0 {
		_, err := io.WriteString(w, "no sessions\n")
		return err
	}
	var tab texttab.Table
	tab.Row().Cell("id", texttab.Right).Cell("created").Cell("rows", texttab.Right).Cell("columns", texttab.Right).Cell("benchmark").Cell("input")
	for _, s := range sessions {
		tab.Row().Cell(strconv.FormatInt(s.ID, 10), texttab.Right)
		tab.Cell(s.Created.Local().Format(time.DateTime))
		tab.Cell(strconv.Itoa(s.Rows), texttab.Right)
		tab.Cell(strconv.Itoa(len(s.Columns)), texttab.Right)
		tab.Cell(s.Executable)
		tab.Cell(s.Input)
	}
	return tab.Format(w)
}
