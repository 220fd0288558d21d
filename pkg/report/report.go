// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report implements the two covlens.Reporter sinks a run can
// be asked to produce: a plain indented log and a self-contained HTML
// page. Both only render "fail" and "missing" leaves; a "default" leaf
// was satisfied and earns no line in the output.
package report

import (
	"fmt"
	"html"
	"io"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/covlens/covlens/pkg/indent"
)

// LogReporter writes one line per unsatisfied leaf, grouped under an
// unindented "<kind>:" heading per tree, with each leaf's message
// indented beneath it. testName, if set, is banner-printed by Start.
type LogReporter struct {
	out      io.Writer
	w        io.Writer
	testName string
	kind     string
	errCount int
}

// NewLogReporter returns a LogReporter writing to w.
func NewLogReporter(w io.Writer, testName string) *LogReporter {
	return &LogReporter{out: w, w: w, testName: testName}
}

func (r *LogReporter) Start() {
	if r.testName != "" {
		fmt.Fprintf(r.out, "Test: %s\n", r.testName)
	}
}

func (r *LogReporter) Title() {}

func (r *LogReporter) TreeStart(kind string) {
	r.kind = kind
	fmt.Fprintf(r.out, "%s:\n", kind)
	r.w = indent.NewWriter(r.out, "  ")
}

func (r *LogReporter) TreeEnd() {
	r.w = r.out
}

// Format emits a line for "fail" and "missing" leaves only, mirroring
// the original reporter_log's refusal to report a satisfied leaf.
func (r *LogReporter) Format(info covlens.NodeInfo, class string) {
	switch class {
	case "fail":
		r.errCount++
		fmt.Fprintf(r.w, "*CL_ITEM_NOT_COVERED_ERR in %s\n", r.assembleInfo(info, class))
	case "missing":
		r.errCount++
		fmt.Fprintf(r.w, "*CL_ITEM_NOT_FOUND_ERR in %s\n", r.assembleInfo(info, class))
	}
}

func (r *LogReporter) assembleInfo(info covlens.NodeInfo, class string) string {
	msg := fmt.Sprintf("%s %s", r.kind, info.Location)
	if info.Line != 0 {
		msg += fmt.Sprintf(",line %d", info.Line)
	}
	msg += fmt.Sprintf(": %s %s", info.Kind, info.Name)
	if class == "fail" {
		msg += fmt.Sprintf(" was hit %d times!", info.HitCount)
	} else {
		msg += " was not found"
	}
	return msg
}

func (r *LogReporter) End() {
	if r.errCount > 0 {
		fmt.Fprintf(r.out, "*CL_ERR Total error count: %d!\n", r.errCount)
	}
}

// HTMLReporter renders the same unsatisfied-leaf information as a
// minimal self-contained HTML page: one table per tree that has at
// least one unsatisfied leaf (a tree whose leaves are all satisfied
// gets no table), one row per unsatisfied leaf, styled by the
// failing/missing class so a
// style sheet can color them distinctly.
type HTMLReporter struct {
	out      io.Writer
	testName string
	kind     string
	rows     []htmlRow
	errCount int
}

type htmlRow struct {
	kind, location, name, class, detail string
}

// NewHTMLReporter returns an HTMLReporter writing to w.
func NewHTMLReporter(w io.Writer, testName string) *HTMLReporter {
	return &HTMLReporter{out: w, testName: testName}
}

func (r *HTMLReporter) Start() {
	fmt.Fprintln(r.out, "<html><head><title>covlens report</title></head><body>")
	if r.testName != "" {
		fmt.Fprintf(r.out, "<h1>%s</h1>\n", html.EscapeString(r.testName))
	}
}

func (r *HTMLReporter) Title() {
	fmt.Fprintln(r.out, "<h2>Coverage exceptions</h2>")
}

func (r *HTMLReporter) TreeStart(kind string) {
	r.kind = kind
}

func (r *HTMLReporter) Format(info covlens.NodeInfo, class string) {
	switch class {
	case "fail":
		r.errCount++
		r.addRow(info, class, fmt.Sprintf("hit %d times", info.HitCount))
	case "missing":
		r.errCount++
		r.addRow(info, class, "not found")
	}
}

func (r *HTMLReporter) addRow(info covlens.NodeInfo, class, detail string) {
	loc := info.Location
	if info.Line != 0 {
		loc = fmt.Sprintf("%s,line %d", loc, info.Line)
	}
	r.rows = append(r.rows, htmlRow{
		kind:     r.kind,
		location: loc,
		name:     fmt.Sprintf("%s %s", info.Kind, info.Name),
		class:    class,
		detail:   detail,
	})
}

func (r *HTMLReporter) TreeEnd() {
	if len(r.rows) == 0 {
		return
	}
	fmt.Fprintf(r.out, "<h3>%s</h3>\n<table border=\"1\">\n", html.EscapeString(r.kind))
	fmt.Fprintln(r.out, "<tr><th>location</th><th>item</th><th>status</th></tr>")
	for _, row := range r.rows {
		fmt.Fprintf(r.out, "<tr class=\"%s\"><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(row.class),
			html.EscapeString(row.location),
			html.EscapeString(row.name),
			html.EscapeString(row.detail))
	}
	fmt.Fprintln(r.out, "</table>")
	r.rows = r.rows[:0]
}

func (r *HTMLReporter) End() {
	if r.errCount > 0 {
		fmt.Fprintf(r.out, "<p>Total error count: %d</p>\n", r.errCount)
	}
	fmt.Fprintln(r.out, "</body></html>")
}
