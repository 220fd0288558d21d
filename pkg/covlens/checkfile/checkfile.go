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

// Package checkfile assembles check-file directives (grammar:
// `check -p <hier-path> -k (type|inst) -t <type-spec> [-l <range-list>] [-n]`)
// into insertions on a covlens.TopTree.
package checkfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/covlens/covlens/pkg/covlens/pathbuilder"
	"github.com/covlens/covlens/pkg/covlens/rangelist"
	"github.com/covlens/covlens/pkg/covlens/tokencmd"
)

// DirectiveError reports a malformed check directive; callers should
// treat it as a fatal syntax error (exit code 2 in the CLI).
type DirectiveError struct {
	File string
	Line int
	Msg  string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

var readers = map[byte]tokencmd.ArgReader{
	'"': tokencmd.QuoteReader,
	'{': tokencmd.BraceReader,
}

// Parse reads check-file directives from r and inserts each into a
// fresh TopTree, which it returns. negate is the pipeline-wide
// negation switch; each directive's own "-n" is XORed against it.
func Parse(r io.Reader, filename string, negate bool) (*covlens.TopTree, error) {
	cmds, err := tokencmd.Parse(tokencmd.Config{Verb: "check", FlagIntroducer: "-", FlagDelim: " "}, readers, r, filename)
	if err != nil {
		return nil, err
	}

	tree := covlens.NewTopTree()
	for _, cmd := range cmds {
		if err := apply(tree, cmd, filename, negate); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func apply(tree *covlens.TopTree, cmd tokencmd.Command, filename string, negate bool) error {
	path, ok := singleArg(cmd, "p")
	if !ok {
		return &DirectiveError{filename, cmd.Line, "check requires exactly one -p <hier-path>"}
	}
	kindTok, ok := singleArg(cmd, "k")
	if !ok {
		return &DirectiveError{filename, cmd.Line, "check requires exactly one -k {type|inst}"}
	}
	var scope covlens.ScopeKind
	switch kindTok {
	case "type":
		scope = covlens.ScopeDesignUnit
	case "inst":
		scope = covlens.ScopeInstance
	default:
		return &DirectiveError{filename, cmd.Line, fmt.Sprintf("unknown -k value %q, want type or inst", kindTok)}
	}

	typeSpec := cmd.Flags["t"]
	if len(typeSpec) == 0 {
		return &DirectiveError{filename, cmd.Line, "check requires -t <type-spec>"}
	}
	kind, args := typeSpec[0], typeSpec[1:]

	_, negateFlag := cmd.Flags["n"]
	negated := negate != negateFlag

	base := pathbuilder.EnsureTrailingSlash(pathbuilder.SanitizeScope(path))
	lineArgs, hasLines := cmd.Flags["l"]

	insert := func(tail string, expanded bool, nodeKind string) {
		info := covlens.NodeInfo{Location: path, Kind: nodeKind, Negated: negated}
		tree.Insert(base+tail, scope, info, expanded)
	}

	switch kind {
	case "stmt", "branch":
		nodeKind := "Statement"
		if kind == "branch" {
			nodeKind = "Branch"
		}
		if !hasLines {
			insert("L/", false, nodeKind)
			return nil
		}
		lines, err := rangelist.Expand(lineArgs)
		if err != nil {
			return &DirectiveError{filename, cmd.Line, err.Error()}
		}
		for _, l := range lines {
			insert(fmt.Sprintf("%d/b/", l.Number), l.Expanded, nodeKind)
		}
		return nil

	case "cond", "expr":
		nodeKind := "Condition"
		if kind == "expr" {
			nodeKind = "Expression"
		}
		if !hasLines {
			insert("X/", false, nodeKind)
			return nil
		}
		lines, err := rangelist.Expand(lineArgs)
		if err != nil {
			return &DirectiveError{filename, cmd.Line, err.Error()}
		}
		minterms, err := rangelist.Expand(args)
		if err != nil {
			return &DirectiveError{filename, cmd.Line, err.Error()}
		}
		for _, l := range lines {
			if len(minterms) == 0 {
				insert(fmt.Sprintf("%d/X/", l.Number), l.Expanded, nodeKind)
				continue
			}
			for _, m := range minterms {
				insert(fmt.Sprintf("%d/%d/m/", l.Number, m.Number), l.Expanded || m.Expanded, nodeKind)
			}
		}
		return nil

	case "state":
		if hasLines {
			return &DirectiveError{filename, cmd.Line, "-t state does not accept -l"}
		}
		if len(args) < 1 {
			return &DirectiveError{filename, cmd.Line, "-t state requires an FSM name"}
		}
		fsm := args[0]
		for _, name := range args[1:] {
			insert(fmt.Sprintf("%s/states/%s/s/", fsm, name), false, "State")
		}
		return nil

	case "trans":
		if hasLines {
			return &DirectiveError{filename, cmd.Line, "-t trans does not accept -l"}
		}
		if len(args) < 1 {
			return &DirectiveError{filename, cmd.Line, "-t trans requires an FSM name"}
		}
		fsm := args[0]
		for _, pair := range args[1:] {
			idx := strings.IndexByte(pair, '>')
			if idx < 0 {
				return &DirectiveError{filename, cmd.Line, fmt.Sprintf("transition %q is not of the form from>to", pair)}
			}
			from, to := pair[:idx], pair[idx+1:]
			insert(fmt.Sprintf("%s/trans/%s/%s/t/", fsm, from, to), false, "Transition")
		}
		return nil

	case "fsm":
		if hasLines {
			return &DirectiveError{filename, cmd.Line, "-t fsm does not accept -l"}
		}
		if len(args) == 0 {
			insert("F/", false, "FSM")
			return nil
		}
		for _, name := range args {
			insert(fmt.Sprintf("%s/F/", name), false, "FSM")
		}
		return nil

	case "cov":
		if hasLines {
			return &DirectiveError{filename, cmd.Line, "-t cov does not accept -l"}
		}
		if len(args) < 1 {
			return &DirectiveError{filename, cmd.Line, "-t cov requires a coverpoint path"}
		}
		index := "0"
		if len(args) >= 2 {
			index = args[1]
		}
		insert(fmt.Sprintf("%s/%s/v/", strings.TrimPrefix(args[0], "/"), index), false, "Coverbin")
		return nil

	case "assert":
		if hasLines {
			return &DirectiveError{filename, cmd.Line, "-t assert does not accept -l"}
		}
		if len(args) < 1 {
			return &DirectiveError{filename, cmd.Line, "-t assert requires an assertion path"}
		}
		insert(fmt.Sprintf("%s/a/", strings.TrimPrefix(args[0], "/")), false, "Assertbin")
		return nil

	default:
		return &DirectiveError{filename, cmd.Line, fmt.Sprintf("unknown -t type %q", kind)}
	}
}

func singleArg(cmd tokencmd.Command, flag string) (string, bool) {
	args, ok := cmd.Flags[flag]
	if !ok || len(args) != 1 {
		return "", false
	}
	return args[0], true
}
