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

// Package exclfile assembles exclusion-file directives (vendor-A
// flavor grammar: `coverage exclude -scope <h>|-du <name>|-src <path>
// [-code <chars>] [-line <ranges>] [-comment "..."] ...`) into
// insertions on a covlens.TopTree.
package exclfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/covlens/covlens/pkg/covlens/pathbuilder"
	"github.com/covlens/covlens/pkg/covlens/rangelist"
	"github.com/covlens/covlens/pkg/covlens/tokencmd"
)

// DirectiveError reports a malformed exclusion directive; callers
// should treat it as a fatal syntax error (exit code 2 in the CLI).
type DirectiveError struct {
	File string
	Line int
	Msg  string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// FilterOp is a comment-filter comparison operator.
type FilterOp int

const (
	OpSmaller FilterOp = iota
	OpBigger
	OpEquals
	OpContains
	OpDifferent
)

// CommentFilter gates a directive on its "-comment" text: reference is
// compared against the directive's comment using Op, then the result
// is XORed with Negated. A directive is admitted only if every
// configured filter passes (logical AND).
type CommentFilter struct {
	Field     string
	Reference string
	Op        FilterOp
	Negated   bool
}

// Match reports whether comment satisfies f.
func (f CommentFilter) Match(comment string) bool {
	var result bool
	cn, cErr := strconv.ParseFloat(comment, 64)
	rn, rErr := strconv.ParseFloat(f.Reference, 64)
	numeric := cErr == nil && rErr == nil

	switch f.Op {
	case OpSmaller:
		if numeric {
			result = cn < rn
		} else {
			result = comment < f.Reference
		}
	case OpBigger:
		if numeric {
			result = cn > rn
		} else {
			result = comment > f.Reference
		}
	case OpEquals:
		result = comment == f.Reference
	case OpContains:
		result = strings.Contains(comment, f.Reference)
	case OpDifferent:
		result = comment != f.Reference
	}
	return result != f.Negated
}

var readers = map[byte]tokencmd.ArgReader{
	'"': tokencmd.QuoteReader,
	'{': tokencmd.BraceReader,
}

// Parse reads exclusion-file directives from r and inserts each into
// a fresh TopTree, which it returns. negate is the pipeline-wide
// negation switch; filters gate directives by their "-comment" text.
func Parse(r io.Reader, filename string, negate bool, filters []CommentFilter) (*covlens.TopTree, error) {
	cfg := tokencmd.Config{Verb: "coverage exclude", FlagIntroducer: "-", FlagDelim: " "}
	cmds, err := tokencmd.Parse(cfg, readers, r, filename)
	if err != nil {
		return nil, err
	}

	tree := covlens.NewTopTree()
	for _, cmd := range cmds {
		if err := apply(tree, cmd, filename, negate, filters); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func apply(tree *covlens.TopTree, cmd tokencmd.Command, filename string, negate bool, filters []CommentFilter) error {
	if _, ok := cmd.Flags["assertpath"]; ok {
		return nil
	}
	if _, ok := cmd.Flags["cvgpath"]; ok {
		return nil
	}

	var scope covlens.ScopeKind
	var raw string
	switch {
	case len(cmd.Flags["scope"]) > 0:
		scope, raw = covlens.ScopeInstance, cmd.Flags["scope"][0]
	case len(cmd.Flags["du"]) > 0:
		scope, raw = covlens.ScopeDesignUnit, cmd.Flags["du"][0]
	case len(cmd.Flags["src"]) > 0:
		scope, raw = covlens.ScopeFile, cmd.Flags["src"][0]
	default:
		return &DirectiveError{filename, cmd.Line, "exclusion requires one of -scope, -du, -src"}
	}
	base := pathbuilder.EnsureTrailingSlash(pathbuilder.SanitizeScope(raw))

	comment := ""
	if args := cmd.Flags["comment"]; len(args) > 0 {
		comment = args[0]
	}
	for _, f := range filters {
		if !f.Match(comment) {
			return nil
		}
	}

	_, negateFlag := cmd.Flags["n"]
	negated := negate != negateFlag
	_, allFalse := cmd.Flags["allfalse"]

	newInfo := func(kind string) covlens.NodeInfo {
		info := covlens.NodeInfo{Location: raw, Kind: kind, Negated: negated, Comment: comment}
		return info
	}

	var err error
	switch {
	case anyFlag(cmd, "fstate", "fs", "ftrans", "ft"):
		err = applyFSM(tree, cmd, scope, base, newInfo)
	case anyFlag(cmd, "feccondrow", "fecexprrow", "udpcondrow", "udpexprrow"):
		err = applyExprRows(tree, cmd, scope, base, newInfo)
	case anyFlag(cmd, "code"):
		err = applyCode(tree, cmd, scope, base, allFalse, newInfo)
	default:
		return &DirectiveError{filename, cmd.Line, "exclusion requires -code, -fstate/-ftrans, or -feccondrow/-fecexprrow"}
	}
	if err != nil {
		return &DirectiveError{filename, cmd.Line, err.Error()}
	}
	return nil
}

func anyFlag(cmd tokencmd.Command, names ...string) bool {
	for _, n := range names {
		if _, ok := cmd.Flags[n]; ok {
			return true
		}
	}
	return false
}

func applyCode(tree *covlens.TopTree, cmd tokencmd.Command, scope covlens.ScopeKind, base string, allFalse bool, newInfo func(string) covlens.NodeInfo) error {
	chars := strings.Join(cmd.Flags["code"], "")
	lineArgs, hasLines := cmd.Flags["line"]

	seen := map[byte]bool{}
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		if seen[c] {
			continue
		}
		seen[c] = true

		switch c {
		case 's', 'b':
			if !hasLines {
				tree.Insert(base+"L/", scope, newInfo("Block"), false)
				continue
			}
			lines, err := rangelist.Expand(lineArgs)
			if err != nil {
				return err
			}
			for _, l := range lines {
				tail := fmt.Sprintf("%d/b/", l.Number)
				if allFalse {
					tail = fmt.Sprintf("%d/all_false_branch/b/", l.Number)
				}
				tree.Insert(base+tail, scope, newInfo("Block"), l.Expanded)
			}
		case 'c', 'e':
			if !hasLines {
				tree.Insert(base+"X/", scope, newInfo("Expression"), false)
				continue
			}
			lines, err := rangelist.Expand(lineArgs)
			if err != nil {
				return err
			}
			for _, l := range lines {
				tree.Insert(base+fmt.Sprintf("%d/X/", l.Number), scope, newInfo("Expression"), l.Expanded)
			}
		default:
			return fmt.Errorf("exclfile: unknown -code character %q", string(c))
		}
	}
	return nil
}

func applyExprRows(tree *covlens.TopTree, cmd tokencmd.Command, scope covlens.ScopeKind, base string, newInfo func(string) covlens.NodeInfo) error {
	opt := firstNonEmpty(cmd.Flags["feccondrow"], cmd.Flags["fecexprrow"], cmd.Flags["udpcondrow"], cmd.Flags["udpexprrow"])
	if len(opt) == 0 {
		lineArgs, hasLines := cmd.Flags["line"]
		if !hasLines {
			tree.Insert(base+"X/", scope, newInfo("Expression"), false)
			return nil
		}
		lines, err := rangelist.Expand(lineArgs)
		if err != nil {
			return err
		}
		for _, l := range lines {
			tree.Insert(base+fmt.Sprintf("%d/X/", l.Number), scope, newInfo("Expression"), l.Expanded)
		}
		return nil
	}

	line := opt[0]
	rows := opt[1:]
	if len(rows) == 0 {
		tree.Insert(base+line+"/X/", scope, newInfo("Expression"), false)
		return nil
	}
	for _, row := range rows {
		tree.Insert(base+line+"/"+row+"/m/", scope, newInfo("Expression"), false)
	}
	return nil
}

func applyFSM(tree *covlens.TopTree, cmd tokencmd.Command, scope covlens.ScopeKind, base string, newInfo func(string) covlens.NodeInfo) error {
	trans := firstNonEmpty(cmd.Flags["ftrans"], cmd.Flags["ft"])
	states := firstNonEmpty(cmd.Flags["fstate"], cmd.Flags["fs"])

	var fsmName string
	switch {
	case len(trans) > 0:
		fsmName = trans[0]
	case len(states) > 0:
		fsmName = states[0]
	}

	switch {
	case len(trans) == 1 || len(states) == 1:
		tree.Insert(base+fsmName+"/F/", scope, newInfo("FSM"), false)
		return nil
	case len(trans) == 0 && len(states) == 0:
		tree.Insert(base+"F/", scope, newInfo("FSM"), false)
		return nil
	}

	fsmBase := base + fsmName + "/"
	if len(trans) > 0 {
		trans = trans[1:]
	}
	if len(states) > 0 {
		states = states[1:]
	}
	for _, t := range trans {
		from, to, err := splitTransition(t)
		if err != nil {
			return err
		}
		tree.Insert(fsmBase+"trans/"+from+"/"+to+"/t/", scope, newInfo("Transition"), false)
	}
	for _, s := range states {
		tree.Insert(fsmBase+"states/"+s+"/s/", scope, newInfo("State"), false)
	}
	return nil
}

func splitTransition(s string) (from, to string, err error) {
	idx := strings.Index(s, "->")
	if idx < 0 {
		return "", "", fmt.Errorf("exclfile: transition %q is not of the form FROM -> TO", s)
	}
	from = strings.TrimSpace(s[:idx])
	to = strings.TrimSpace(s[idx+2:])
	return from, to, nil
}

func firstNonEmpty(opts ...[]string) []string {
	for _, o := range opts {
		if len(o) > 0 {
			return o
		}
	}
	return nil
}
