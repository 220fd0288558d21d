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

// Package vplan unpacks a verification-plan file (a gzip-compressed
// XML tree of named sections, each optionally carrying a metrics
// port that enumerates the coverage kinds it expects) into a flat
// list of check directives that can be folded into the same TopTree
// a check-file would populate.
package vplan

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/covlens/covlens/pkg/covlens/pathbuilder"
)

// Directive is one coverage expectation extracted from a plan: an
// un-rooted hierarchical path and the check-file type token (stmt,
// cond, expr, or fsm) it expects coverage of.
type Directive struct {
	Path string
	Kind string
}

type xmlRoot struct {
	Sections []xmlSection `xml:"rootElements>section"`
}

type xmlSection struct {
	Name        string          `xml:"name"`
	Sections    []xmlSection    `xml:"section"`
	MetricsPort *xmlMetricsPort `xml:"metricsPort"`
}

type xmlMetricsPort struct {
	Name         string   `xml:"name"`
	MetricsTypes xmlTypes `xml:"metricsTypes"`
}

type xmlTypes struct {
	Items []xmlAny `xml:",any"`
}

type xmlAny struct {
	XMLName xml.Name
}

// gzipMagic is the two-byte gzip member header; vplan files are the
// gzip-compressed XML the original unpacked with "zcat" into a scratch
// file before reading it.
var gzipMagic = [2]byte{0x1f, 0x8b}

// Parse reads a plan from r, transparently gunzipping it if it is
// gzip-compressed, and returns every directive discovered in its
// section tree.
func Parse(r io.Reader) ([]Directive, error) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(2)

	var xr io.Reader = br
	if len(peek) == 2 && peek[0] == gzipMagic[0] && peek[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("vplan: %w", err)
		}
		defer gz.Close()
		xr = gz
	}

	var root xmlRoot
	if err := xml.NewDecoder(xr).Decode(&root); err != nil {
		return nil, fmt.Errorf("vplan: %w", err)
	}

	var out []Directive
	for _, s := range root.Sections {
		walkSection(s, "", &out)
	}
	return out, nil
}

func walkSection(s xmlSection, acc string, out *[]Directive) {
	path := acc + "/" + s.Name

	if s.MetricsPort != nil {
		portPath := strings.TrimPrefix(path+"/"+s.MetricsPort.Name, "/")
		for _, item := range s.MetricsPort.MetricsTypes.Items {
			if kind, ok := classify(item.XMLName.Local); ok {
				*out = append(*out, Directive{Path: portPath, Kind: kind})
			}
		}
	}
	for _, child := range s.Sections {
		walkSection(child, path, out)
	}
}

// classify maps a metricsTypes child element's tag name to a
// check-file type token by its leading letter: "fsm-..." tags select
// fsm coverage, "block..."/"branch..." tags select statement coverage,
// and "expression..."/"condition..." tags select expression coverage.
func classify(tag string) (string, bool) {
	if tag == "" {
		return "", false
	}
	switch tag[0] {
	case 'f':
		return "fsm", true
	case 'b':
		return "stmt", true
	case 'e', 'c':
		return "expr", true
	default:
		return "", false
	}
}

// Insert folds directives into tree under scope, one scope-wide
// wildcard leaf per directive (a plan names what must be covered, not
// which lines or minterms, so every directive collapses to the same
// wildcard a check-file's "-t <kind>" with no "-l" produces).
func Insert(tree *covlens.TopTree, directives []Directive, scope covlens.ScopeKind) {
	for _, d := range directives {
		base := pathbuilder.EnsureTrailingSlash(pathbuilder.SanitizeScope(d.Path))
		tail, ok := wildcardTail(d.Kind)
		if !ok {
			continue
		}
		info := covlens.NodeInfo{Location: d.Path, Kind: d.Kind}
		tree.Insert(base+tail, scope, info, false)
	}
}

func wildcardTail(kind string) (string, bool) {
	switch kind {
	case "stmt", "branch":
		return "L/", true
	case "cond", "expr":
		return "X/", true
	case "fsm":
		return "F/", true
	default:
		return "", false
	}
}
