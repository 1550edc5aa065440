// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchjson reads the measurement record that a benchmark
// executable prints for one run.
//
// A benchmark writes free-form text to standard output. Exactly one
// line of that output is expected to begin with '{' and hold a single
// JSON object of scalar fields, for example
//
//	Preprocessing: 0 edges erased, 2 edges added
//	{"n_nodes": 40, "gh_time_total": 1.5, "gh_time_min_cut": 0.75}
//
// The set of fields is not fixed: a Record is whatever the benchmark
// reports, in the order it reported it.
package benchjson

import "strconv"

// A Kind is the type of a Value.
type Kind uint8

const (
	// Missing marks the absence of a value. It is the zero Kind,
	// so the zero Value is missing.
	Missing Kind = iota
	// Number is a numeric value.
	Number
	// Text is any non-numeric value.
	Text
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Number:
		return "number"
	case Text:
		return "text"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// A Value is a single scalar measurement: a number, a piece of text,
// or nothing at all.
type Value struct {
	Kind Kind

	// Num is the value of a Number.
	Num float64

	// Str is the text of a Text value. For a Number, Str is the
	// literal the number was read from, so that writing it back
	// out reproduces the input exactly.
	Str string
}

// NumberValue returns a Number Value for x, formatted with the
// fewest digits that represent x exactly.
func NumberValue(x float64) Value {
	return Value{Kind: Number, Num: x, Str: strconv.FormatFloat(x, 'g', -1, 64)}
}

// TextValue returns a Text Value for s.
func TextValue(s string) Value {
	return Value{Kind: Text, Str: s}
}

// ParseNumber parses s as a Number Value, keeping s as its literal.
func ParseNumber(s string) (Value, bool) {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}
	return Value{Kind: Number, Num: x, Str: s}, true
}

// IsMissing reports whether v holds no value.
func (v Value) IsMissing() bool {
	return v.Kind == Missing
}

// Float returns the numeric value of v and whether v is a Number.
func (v Value) Float() (float64, bool) {
	if v.Kind != Number {
		return 0, false
	}
	return v.Num, true
}

// String returns the textual form of v, or "" if v is missing.
func (v Value) String() string {
	if v.Kind == Number && v.Str == "" {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// Equal reports whether v and w hold the same value. Numbers compare
// by numeric value, not by literal.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Num == w.Num
	case Text:
		return v.Str == w.Str
	}
	return true
}

// A Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// A Record is the set of measurements reported by one run of a
// benchmark.
//
// Fields are kept in the order the benchmark emitted them. A Record
// never contains a missing Value: a JSON null is simply not added.
type Record struct {
	// Input is the input file the benchmark was run on. It is
	// purely diagnostic.
	Input string

	// Fields is the list of measurements. Callers that add keys
	// must use Set so the key index stays current.
	Fields []Field

	// fieldPos maps from Field.Key to index in Fields. It may be
	// nil, in which case it is rebuilt on demand.
	fieldPos map[string]int
}

// Get returns the value of key and whether it is present.
func (r *Record) Get(key string) (Value, bool) {
	pos, ok := r.index(key)
	if !ok {
		return Value{}, false
	}
	return r.Fields[pos].Value, true
}

// Set sets key to v. A new key is appended; an existing key is
// updated in place and keeps its position. Setting a missing Value
// deletes the key.
func (r *Record) Set(key string, v Value) {
	pos, ok := r.index(key)
	if v.IsMissing() {
		if ok {
			r.Fields = append(r.Fields[:pos], r.Fields[pos+1:]...)
			r.fieldPos = nil
		}
		return
	}
	if ok {
		r.Fields[pos].Value = v
		return
	}
	r.fieldPos[key] = len(r.Fields)
	r.Fields = append(r.Fields, Field{key, v})
}

// Len returns the number of fields in r.
func (r *Record) Len() int {
	return len(r.Fields)
}

func (r *Record) index(key string) (int, bool) {
	if r.fieldPos == nil {
		r.fieldPos = make(map[string]int, len(r.Fields))
		for i, f := range r.Fields {
			r.fieldPos[f.Key] = i
		}
	}
	pos, ok := r.fieldPos[key]
	return pos, ok
}
