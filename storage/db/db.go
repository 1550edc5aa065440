// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives benchmark datasets in a SQL database.
//
// Each invocation of the benchmark driver that produces a dataset can
// be stored as a session. A session records where the dataset came
// from and every present cell of it, so the dataset can be read back
// exactly as it was built.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/kmincut/jsonbench/benchjson"
	"github.com/kmincut/jsonbench/dataset"
)

// DB is a high-level interface to an archive database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql     *sql.DB // underlying database connection
	dialect string
	// prepared statements
	insertSession *sql.Stmt
	insertColumn  *sql.Stmt
}

// Dialects of SQL understood by DB.
const (
	dialectSQLite = "sqlite3"
	dialectMySQL  = "mysql"
)

// dialect returns the SQL dialect spoken by driverName. libsql is a
// fork of SQLite; anything unknown gets MySQL syntax.
func dialect(driverName string) string {
	switch driverName {
	case "sqlite3", "libsql":
		return dialectSQLite
	}
	return dialectMySQL
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. sqlite3, libsql and mysql
// are explicitly supported; other database engines will receive
// MySQL query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db, dialect: dialect(driverName)}
	if d.dialect == dialectSQLite && strings.Contains(dataSourceName, ":memory:") {
		// Every connection to an in-memory database opens a
		// different database.
		db.SetMaxOpenConns(1)
	}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. This is used by the sqlite3 package to
// register a ConnectHook. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the dialect.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Sessions (
	SessionID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Created VARCHAR(64),
	Executable VARCHAR(1024),
	Input VARCHAR(1024),
	Host VARCHAR(1024),
	NumRows BIGINT
);
CREATE TABLE IF NOT EXISTS SessionColumns (
	SessionID BIGINT UNSIGNED,
	ColumnIndex INT,
	Name VARCHAR(255),
	PRIMARY KEY (SessionID, ColumnIndex),
	FOREIGN KEY (SessionID) REFERENCES Sessions(SessionID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Cells (
	SessionID BIGINT UNSIGNED,
	RowIndex BIGINT,
	ColumnIndex INT,
	Kind INT,
	Value VARCHAR(8192),
	PRIMARY KEY (SessionID, RowIndex, ColumnIndex),
{{if not .sqlite3}}
	Index (SessionID, ColumnIndex),
{{end}}
	FOREIGN KEY (SessionID, ColumnIndex) REFERENCES SessionColumns(SessionID, ColumnIndex) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS CellsColumn ON Cells(SessionID, ColumnIndex);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql.
func (db *DB) createTables() error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{db.dialect: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertSession, err = db.sql.Prepare("INSERT INTO Sessions(Created, Executable, Input, Host, NumRows) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertColumn, err = db.sql.Prepare("INSERT INTO SessionColumns(SessionID, ColumnIndex, Name) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is overridden by tests.
var now = time.Now

// A Session describes one archived dataset.
type Session struct {
	// ID is assigned by InsertDataset.
	ID int64

	// Created is when the session was archived. If zero,
	// InsertDataset sets it to the current time.
	Created time.Time

	// Executable is the benchmark that produced the dataset, or ""
	// if the dataset was loaded from a table.
	Executable string

	// Input is the input path given to the driver.
	Input string

	// Host describes the machine the benchmark ran on.
	Host string

	// Rows and Columns describe the shape of the dataset. They are
	// filled in by InsertDataset and by the read methods.
	Rows    int
	Columns []string
}

// InsertDataset stores d as a new session described by s, in a
// single transaction. It sets s.ID, s.Rows, s.Columns and, if it is
// zero, s.Created.
func (db *DB) InsertDataset(ctx context.Context, s *Session, d *dataset.Dataset) (err error) {
	if s.Created.IsZero() {
		s.Created = now()
	}
	s.Rows, s.Columns = d.Len(), d.Columns()

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertSession).ExecContext(ctx,
		s.Created.UTC().Format(time.RFC3339Nano), s.Executable, s.Input, s.Host, s.Rows)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	insertColumn := tx.StmtContext(ctx, db.insertColumn)
	for i, name := range s.Columns {
		if _, err := insertColumn.ExecContext(ctx, id, i, name); err != nil {
			return err
		}
	}

	// One multi-row INSERT per dataset row keeps statements well
	// under the bound-parameter limits of every driver.
	cols := make([]*dataset.Column, len(s.Columns))
	for i, name := range s.Columns {
		cols[i], _ = d.Column(name)
	}
	var args []interface{}
	for r := 0; r < s.Rows; r++ {
		args = args[:0]
		for ci, c := range cols {
			v := c.Cells[r]
			if v.IsMissing() {
				continue
			}
			args = append(args, id, r, ci, int(v.Kind), v.String())
		}
		if len(args) == 0 {
			continue
		}
		query := "INSERT INTO Cells(SessionID, RowIndex, ColumnIndex, Kind, Value) VALUES " + strings.Repeat("(?, ?, ?, ?, ?), ", len(args)/5)
		query = strings.TrimSuffix(query, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	s.ID = id
	return nil
}

// A NotFoundError reports a session ID that is not in the archive.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %d not found", e.ID)
}

// Dataset reads back the session with the given ID and its dataset.
func (db *DB) Dataset(ctx context.Context, id int64) (*Session, *dataset.Dataset, error) {
	s, err := db.session(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	cells := make([][]benchjson.Value, len(s.Columns))
	for i := range cells {
		cells[i] = make([]benchjson.Value, s.Rows)
	}
	rows, err := db.sql.QueryContext(ctx, "SELECT RowIndex, ColumnIndex, Kind, Value FROM Cells WHERE SessionID = ?", id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r, c, kind int
			val        string
		)
		if err := rows.Scan(&r, &c, &kind, &val); err != nil {
			return nil, nil, err
		}
		if r < 0 || r >= s.Rows || c < 0 || c >= len(cells) {
			return nil, nil, fmt.Errorf("session %d: cell (%d, %d) out of range", id, r, c)
		}
		v, err := decodeCell(benchjson.Kind(kind), val)
		if err != nil {
			return nil, nil, fmt.Errorf("session %d: cell (%d, %d): %v", id, r, c, err)
		}
		cells[c][r] = v
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	d := new(dataset.Dataset)
	for i, name := range s.Columns {
		if err := d.SetColumn(name, cells[i]); err != nil {
			return nil, nil, err
		}
	}
	return s, d, nil
}

func decodeCell(kind benchjson.Kind, val string) (benchjson.Value, error) {
	switch kind {
	case benchjson.Number:
		v, ok := benchjson.ParseNumber(val)
		if !ok {
			return benchjson.Value{}, fmt.Errorf("bad number %q", val)
		}
		return v, nil
	case benchjson.Text:
		return benchjson.TextValue(val), nil
	}
	return benchjson.Value{}, fmt.Errorf("bad kind %d", kind)
}

// session reads the description of one session, including its
// columns.
func (db *DB) session(ctx context.Context, id int64) (*Session, error) {
	row := db.sql.QueryRowContext(ctx, "SELECT SessionID, Created, Executable, Input, Host, NumRows FROM Sessions WHERE SessionID = ?", id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	if err := db.loadColumns(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(sc scanner) (*Session, error) {
	var (
		s       Session
		created string
	)
	if err := sc.Scan(&s.ID, &created, &s.Executable, &s.Input, &s.Host, &s.Rows); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("session %d: bad creation time %q", s.ID, created)
	}
	s.Created = t
	return &s, nil
}

func (db *DB) loadColumns(ctx context.Context, s *Session) error {
	rows, err := db.sql.QueryContext(ctx, "SELECT Name FROM SessionColumns WHERE SessionID = ? ORDER BY ColumnIndex", s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	s.Columns = nil
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		s.Columns = append(s.Columns, name)
	}
	return rows.Err()
}

// ListSessions returns up to limit sessions, newest first. A limit of
// zero or less means no limit.
func (db *DB) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	query := "SELECT SessionID, Created, Executable, Input, Host, NumRows FROM Sessions ORDER BY SessionID DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if err := db.loadColumns(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteSession removes a session and its dataset.
func (db *DB) DeleteSession(ctx context.Context, id int64) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	// Delete children explicitly; foreign keys may not be enforced.
	for _, q := range []string{
		"DELETE FROM Cells WHERE SessionID = ?",
		"DELETE FROM SessionColumns WHERE SessionID = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM Sessions WHERE SessionID = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

// CountSessions returns the number of archived sessions.
func (db *DB) CountSessions() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Sessions").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertSession.Close(); err != nil {
		return err
	}
	if err := db.insertColumn.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
