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

// Program covlens checks a coverage database against a set of
// check-file and exclusion-file directives (optionally supplemented by
// a verification-plan file) and emits a report of satisfied, violated
// and missing checks.
//
// Usage: covlens -check FILE [-check FILE...] -excl FILE [-excl FILE...]
//                 -vplan FILE -db PATH -report {log|html} -negate -refine
//                 -vendor {a|b} -o OUTFILE
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/covlens/covlens/pkg/covlens/checkfile"
	"github.com/covlens/covlens/pkg/covlens/exclfile"
	"github.com/covlens/covlens/pkg/covlens/sampledb"
	"github.com/covlens/covlens/pkg/covlens/tokencmd"
	"github.com/covlens/covlens/pkg/covlens/vplan"
	"github.com/covlens/covlens/pkg/covlens/walker"
	"github.com/covlens/covlens/pkg/report"
	"github.com/pborman/getopt"
)

// Exit codes per the external interface contract: 0 success, 1 I/O
// failure, 2 directive syntax error, 3 semantic configuration error.
const (
	exitOK = iota
	exitIOError
	exitSyntaxError
	exitConfigError
)

var stop = os.Exit

func main() {
	var (
		checkFiles []string
		exclFiles  []string
		vplanFile  string
		dbFile     string
		reportKind string
		negate     bool
		refine     bool
		outFile    string
		vendor     string
	)

	getopt.ListVarLong(&checkFiles, "check", 0, "check-file to parse (repeatable)", "FILE")
	getopt.ListVarLong(&exclFiles, "excl", 0, "exclusion-file to parse (repeatable)", "FILE")
	getopt.StringVarLong(&vplanFile, "vplan", 0, "verification-plan file to unpack", "FILE")
	getopt.StringVarLong(&dbFile, "db", 0, "coverage database fixture to walk", "PATH")
	getopt.StringVarLong(&reportKind, "report", 0, "report format: log or html", "FORMAT")
	getopt.BoolVarLong(&negate, "negate", 0, "invert every directive's pass/fail class")
	getopt.BoolVarLong(&refine, "refine", 0, "re-index blocks sequentially instead of by source line")
	getopt.StringVarLong(&outFile, "o", 'o', "write the report to PATH instead of stdout", "PATH")
	getopt.StringVarLong(&vendor, "vendor", 0, "database lookup mode: a (triple-key, RunTriple) or b (single-key, RunSingle)", "MODE")
	getopt.SetParameters("")

	if err := getopt.Getopt(func(getopt.Option) bool { return true }); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintUsage(os.Stderr)
		stop(exitConfigError)
		return
	}

	if reportKind == "" {
		reportKind = "log"
	}
	if reportKind != "log" && reportKind != "html" {
		fmt.Fprintf(os.Stderr, "covlens: invalid -report value %q, want log or html\n", reportKind)
		stop(exitConfigError)
		return
	}
	if dbFile == "" {
		fmt.Fprintln(os.Stderr, "covlens: -db PATH is required")
		stop(exitConfigError)
		return
	}
	if len(checkFiles) == 0 && len(exclFiles) == 0 && vplanFile == "" {
		fmt.Fprintln(os.Stderr, "covlens: at least one of -check, -excl, -vplan is required")
		stop(exitConfigError)
		return
	}
	if vendor == "" {
		vendor = "a"
	}
	if vendor != "a" && vendor != "b" {
		fmt.Fprintf(os.Stderr, "covlens: invalid -vendor value %q, want a or b\n", vendor)
		stop(exitConfigError)
		return
	}

	sources, err := loadSources(checkFiles, exclFiles, vplanFile, negate)
	if err != nil {
		reportFatal(err)
		return
	}

	db, err := openDatabase(dbFile)
	if err != nil {
		reportFatal(err)
		return
	}

	for _, src := range sources {
		var w *walker.Walker
		if vendor == "b" {
			w = walker.NewSingle(src.tree, refine)
		} else {
			w = walker.New(src.tree, refine)
		}
		if err := w.Run(context.Background(), db); err != nil {
			reportFatal(err)
			return
		}
	}

	out := io.Writer(os.Stdout)
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			reportFatal(err)
			return
		}
		defer f.Close()
		out = f
	}

	var rep covlens.Reporter
	if reportKind == "html" {
		rep = report.NewHTMLReporter(out, dbFile)
	} else {
		rep = report.NewLogReporter(out, dbFile)
	}
	renderSources(sources, rep)
	stop(exitOK)
}

// source pairs a parsed TopTree with the label its leaves are reported
// under, so check, exclusion and vplan directives can share one report
// run without the core needing a tree-merge operation.
type source struct {
	label string
	tree  *covlens.TopTree
}

func loadSources(checkFiles, exclFiles []string, vplanFile string, negate bool) ([]source, error) {
	var sources []source

	if len(checkFiles) > 0 {
		tree, err := parseConcatenated(checkFiles, func(r io.Reader, name string) (*covlens.TopTree, error) {
			return checkfile.Parse(r, name, negate)
		})
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{label: "checks", tree: tree})
	}

	if len(exclFiles) > 0 {
		tree, err := parseConcatenated(exclFiles, func(r io.Reader, name string) (*covlens.TopTree, error) {
			return exclfile.Parse(r, name, negate, nil)
		})
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{label: "exclusions", tree: tree})
	}

	if vplanFile != "" {
		f, err := os.Open(vplanFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		directives, err := vplan.Parse(f)
		if err != nil {
			return nil, err
		}
		tree := covlens.NewTopTree()
		vplan.Insert(tree, directives, covlens.ScopeInstance)
		sources = append(sources, source{label: "vplan", tree: tree})
	}

	return sources, nil
}

// parseConcatenated folds multiple files of the same directive kind
// into one TopTree by feeding parse a single reader over their
// concatenated contents: the assemblers already tokenize a bare stream
// of commands with no file-boundary syntax of their own, so this is
// exactly what parsing one file that happened to contain all of them
// would produce. Line numbers in any resulting DirectiveError are
// relative to the concatenated stream rather than the originating file.
func parseConcatenated(files []string, parse func(io.Reader, string) (*covlens.TopTree, error)) (*covlens.TopTree, error) {
	readers := make([]io.Reader, 0, len(files))
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		readers = append(readers, f)
	}
	return parse(io.MultiReader(readers...), strings.Join(files, ","))
}

func openDatabase(path string) (*sampledb.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sampledb.Load(f)
}

func renderSources(sources []source, rep covlens.Reporter) {
	rep.Start()
	rep.Title()
	for _, src := range sources {
		for _, kind := range []covlens.ScopeKind{covlens.ScopeFile, covlens.ScopeDesignUnit, covlens.ScopeInstance} {
			tree := src.tree.Tree(kind)
			if tree.Empty() {
				continue
			}
			rep.TreeStart(src.label + " " + kind.String())
			tree.Iterate(covlens.DefaultChecker, rep)
			rep.TreeEnd()
		}
	}
	rep.End()
}

// reportFatal classifies err into the §7 exit-code taxonomy and exits.
func reportFatal(err error) {
	switch err.(type) {
	case *checkfile.DirectiveError, *exclfile.DirectiveError, *tokencmd.SyntaxError:
		fmt.Fprintln(os.Stderr, err)
		stop(exitSyntaxError)
	default:
		if strings.Contains(err.Error(), "syntax") {
			fmt.Fprintln(os.Stderr, err)
			stop(exitSyntaxError)
			return
		}
		fmt.Fprintln(os.Stderr, "*CL_ERR: Execution error!")
		fmt.Fprintln(os.Stderr, err)
		stop(exitIOError)
	}
}
