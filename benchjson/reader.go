// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// A ParseError reports that a run's output did not contain a usable
// record. It carries enough of the output to be logged usefully.
type ParseError struct {
	// Input is the input file of the run.
	Input string

	// Line is the 1-based line number of the offending output
	// line, or 0 if no line began with '{'.
	Line int

	Msg string

	// Excerpt is a prefix of the offending line, or of the whole
	// output if no line began with '{'.
	Excerpt string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Input, e.Msg)
	}
	return fmt.Sprintf("%s: output line %d: %s", e.Input, e.Line, e.Msg)
}

// maxExcerpt bounds the size of ParseError.Excerpt in bytes.
const maxExcerpt = 200

// ErrNoRecord is the message of a ParseError for output that has no
// line beginning with '{'.
var ErrNoRecord = errors.New("no line begins with '{'")

// Parse finds the record line in the output of one run of a
// benchmark on input and decodes it.
//
// The record line is the first line that begins with '{'. Later
// lines beginning with '{' are ignored, even if the first one is not
// valid JSON. Any failure is reported as a *ParseError.
func Parse(output []byte, input string) (*Record, error) {
	line, n := FindRecordLine(output)
	if n == 0 {
		return nil, &ParseError{Input: input, Msg: ErrNoRecord.Error(), Excerpt: excerpt(output)}
	}
	rec, err := Decode(line)
	if err != nil {
		return nil, &ParseError{Input: input, Line: n, Msg: err.Error(), Excerpt: excerpt(line)}
	}
	rec.Input = input
	return rec, nil
}

// FindRecordLine returns the first line of output that begins with
// '{', without its line terminator, and its 1-based line number.
// If there is no such line, it returns nil, 0.
func FindRecordLine(output []byte) (line []byte, n int) {
	for len(output) > 0 {
		n++
		l := output
		if i := bytes.IndexByte(output, '\n'); i >= 0 {
			l, output = output[:i], output[i+1:]
		} else {
			output = nil
		}
		if len(l) > 0 && l[0] == '{' {
			return bytes.TrimRight(l, "\r"), n
		}
	}
	return nil, 0
}

// Decode decodes a single JSON object into a Record, keeping the
// order of its keys.
//
// JSON numbers become Number values with their literal preserved,
// strings and booleans become Text, null removes the key, and nested
// arrays or objects are kept as Text holding their compact encoding.
// Anything other than whitespace after the object is an error.
func Decode(line []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	tok, err := dec.Token()
	if err != nil {
		return nil, syntaxError(err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected JSON object, found %v", tok)
	}

	rec := new(Record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, syntaxError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, found %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, syntaxError(err)
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		rec.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, syntaxError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("extra data after JSON object")
	}
	return rec, nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	switch raw[0] {
	case 'n':
		return Value{}, nil
	case 't', 'f':
		return TextValue(string(raw)), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return TextValue(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return Value{}, err
		}
		return TextValue(buf.String()), nil
	}
	v, ok := ParseNumber(string(raw))
	if !ok || math.IsInf(v.Num, 0) {
		return Value{}, fmt.Errorf("number %s out of range", raw)
	}
	return v, nil
}

func syntaxError(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.New("unexpected end of JSON input")
	}
	return err
}

func excerpt(b []byte) string {
	if len(b) <= maxExcerpt {
		return string(b)
	}
	// Don't split a UTF-8 sequence.
	n := maxExcerpt
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]) + "..."
}
