// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"io"
	"os"

	"github.com/google/safehtml/template"
)

// A Page is the HTML index written next to a set of charts.
type Page struct {
	Title   string
	Input   string // Input file, directory or table
	Host    string // Host description
	Rows    int
	Columns []string
	Charts  []ChartLink
	Summary []Summary
}

// A ChartLink is one chart on a Page. Charts that failed to render
// are listed with their error instead of an image.
type ChartLink struct {
	File  string // Relative to the page
	Title string
	Err   string
}

var htmlTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"float": formatFloat,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; }
table.summary td { text-align: right; padding: 0 0.5em; }
.error { color: #a00; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Rows}} runs of {{.Input}}{{if .Host}} on {{.Host}}{{end}}.</p>
<p>Columns:{{range .Columns}} <code>{{.}}</code>{{end}}</p>
{{range .Charts -}}
<h2>{{.Title}}</h2>
{{if .Err -}}
<p class="error">{{.Err}}</p>
{{- else -}}
<img src="{{.File}}" alt="{{.Title}}" width="750">
{{- end}}
{{end -}}
{{if .Summary -}}
<h2>Summary</h2>
<table class="summary">
<tr><th>column<th>n<th>mean<th>std<th>min<th>median<th>max
{{range .Summary -}}
<tr><th>{{.Column}}<td>{{.N}}<td>{{float .Mean}}<td>{{float .StdDev}}<td>{{float .Min}}<td>{{float .Median}}<td>{{float .Max}}
{{end -}}
</table>
{{end -}}
</body>
</html>
`))

// WriteHTML writes p to w as an HTML page.
func WriteHTML(w io.Writer, p *Page) error {
	return htmlTemplate.Execute(w, p)
}

// SaveHTML writes p to the named file.
func SaveHTML(path string, p *Page) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteHTML(f, p)
}
