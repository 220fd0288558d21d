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

// Package pathbuilder turns a single vendor coverage record into the
// path keys ExclusionTree expects, one builder per supported database
// vendor: BuilderA produces the (instance, du, file) triple consumed
// by TopTree.RunTriple, BuilderB a single key consumed by RunSingle.
package pathbuilder

import (
	"fmt"
	"strings"

	"github.com/covlens/covlens/pkg/covlens"
)

// RecordKind distinguishes the coverage item a Record describes; it
// selects which tail Keys/Key appends.
type RecordKind int

const (
	KindStatement RecordKind = iota
	KindBranch
	KindBlock
	KindAllFalseBranch
	KindExpression
	KindCondition
	KindFSMState
	KindFSMTransition
	KindCovergroupBin
	KindAssertionBin
)

// UnknownMarker is the vendor convention for a record name whose first
// rune flags a new, previously-unseen expression instance.
const UnknownMarker = '?'

// Record is one vendor-neutral coverage record as delivered by a
// walker callback. Not every field applies to every Kind; see the
// §4.4 tail table mirrored in tail().
type Record struct {
	Kind RecordKind

	InstanceScope   string
	DesignUnitScope string
	FileScope       string

	Name       string
	SourceLine uint32
	HitCount   int64

	FSMName    string
	StateName  string
	FromState  string
	ToState    string

	Covergroup  string
	Coverpoint  string
	Bin         string
	RepeatIndex int

	Scope     string
	Assertion string
}

// sanitize applies the common scope cleanup recipe: strip a leading
// separator, collapse "::" to "/", drop indexing brackets and spaces.
func sanitize(s string) string {
	s = strings.TrimPrefix(s, "/")
	s = strings.ReplaceAll(s, "::", "/")
	s = stripBracketIndex(s)
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// stripBracketIndex removes every "[...]" region, used to drop
// indexing suffixes from bin and instance names.
func stripBracketIndex(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripTrailingMethod drops a trailing "/"-segment that names a
// method or function, identified by the presence of "(" — used when
// sanitizing assertion scopes.
func stripTrailingMethod(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) == 0 {
		return s
	}
	if strings.Contains(parts[len(parts)-1], "(") {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "/")
}

func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// SanitizeScope applies the §4.4 scope cleanup recipe and is exported
// so the check-file and exclusion-file assemblers, which build keys
// directly from user-written hierarchical paths rather than vendor
// records, can share it.
func SanitizeScope(s string) string { return sanitize(s) }

// EnsureTrailingSlash appends "/" to s unless it is empty or already
// ends with one.
func EnsureTrailingSlash(s string) string { return ensureTrailingSlash(s) }

// exprState tracks the two counters §4.4 requires builders to own as
// instance fields, never package globals: topExprIndex (reset on
// scope change) and mintermIndex (reset on expression-instance
// change).
type exprState struct {
	seen         bool
	topExprIndex int
	mintermIndex int
	prevScope    string
	prevName     string
	prevLine     uint32
}

// tail advances st (for Kind == KindExpression/KindCondition) and
// returns the type-specific tail for r, or an error if r.Kind is
// unrecognized.
func (st *exprState) tail(r Record, scopeKey string) (string, error) {
	switch r.Kind {
	case KindStatement, KindBranch, KindBlock:
		return fmt.Sprintf("%d/b/", r.SourceLine), nil
	case KindAllFalseBranch:
		return fmt.Sprintf("%d/all_false_branch/b/", r.SourceLine), nil
	case KindExpression, KindCondition:
		scopeChanged := !st.seen || scopeKey != st.prevScope
		nameChanged := scopeChanged ||
			r.Name != st.prevName ||
			r.SourceLine != st.prevLine ||
			(len(r.Name) > 0 && rune(r.Name[0]) == UnknownMarker)

		if scopeChanged {
			st.topExprIndex = 0
		}
		if nameChanged {
			st.mintermIndex = 0
			if !scopeChanged {
				st.topExprIndex++
			}
		} else {
			st.mintermIndex++
		}
		st.prevScope = scopeKey
		st.prevName = r.Name
		st.prevLine = r.SourceLine
		st.seen = true
		return fmt.Sprintf("%d/%d/m/", r.SourceLine, st.mintermIndex), nil
	case KindFSMState:
		return fmt.Sprintf("%s/states/%s/s/", r.FSMName, r.StateName), nil
	case KindFSMTransition:
		return fmt.Sprintf("%s/trans/%s/%s/t/", r.FSMName, r.FromState, r.ToState), nil
	case KindCovergroupBin:
		return fmt.Sprintf("%s/%s/%s/%d/v/", r.Covergroup, r.Coverpoint, sanitize(r.Bin), r.RepeatIndex), nil
	case KindAssertionBin:
		return fmt.Sprintf("%s/a/", r.Assertion), nil
	default:
		return "", fmt.Errorf("pathbuilder: unrecognized record kind %d", r.Kind)
	}
}

func infoFromRecord(r Record) covlens.NodeInfo {
	return covlens.NodeInfo{
		Name:     r.Name,
		Line:     r.SourceLine,
		HitCount: r.HitCount,
		Found:    true,
	}
}

// BuilderA builds the vendor-A triple of keys consumed by
// TopTree.RunTriple. Its expression-indexing state is scoped to the
// instance hierarchy, the most granular of the three.
type BuilderA struct {
	expr exprState
}

// Keys returns the (instance, du, file) keys for r; an entry is empty
// when the corresponding scope is not populated in r. KindAssertionBin
// carries its scope in r.Scope rather than r.InstanceScope, so it
// always roots keys[0] regardless of the other scope fields.
func (b *BuilderA) Keys(r Record) ([3]string, covlens.NodeInfo, error) {
	if r.Kind == KindAssertionBin {
		tail, err := b.expr.tail(r, r.Scope)
		if err != nil {
			return [3]string{}, covlens.NodeInfo{}, err
		}
		scope := ensureTrailingSlash(stripTrailingMethod(sanitize(r.Scope)))
		return [3]string{scope + tail, "", ""}, infoFromRecord(r), nil
	}

	scopeKey := r.InstanceScope
	if scopeKey == "" {
		scopeKey = r.DesignUnitScope
	}
	if scopeKey == "" {
		scopeKey = r.FileScope
	}

	tail, err := b.expr.tail(r, scopeKey)
	if err != nil {
		return [3]string{}, covlens.NodeInfo{}, err
	}

	var keys [3]string
	if r.InstanceScope != "" {
		keys[0] = ensureTrailingSlash(sanitize(r.InstanceScope)) + tail
	}
	if r.DesignUnitScope != "" {
		keys[1] = ensureTrailingSlash(sanitize(r.DesignUnitScope)) + tail
	}
	if r.FileScope != "" {
		keys[2] = ensureTrailingSlash(sanitize(r.FileScope)) + tail
	}
	return keys, infoFromRecord(r), nil
}

// BuilderB builds the vendor-B single key consumed by
// TopTree.RunSingle.
type BuilderB struct {
	expr exprState
}

// Key returns the single lookup key for r. KindAssertionBin carries
// its scope in r.Scope rather than r.InstanceScope.
func (b *BuilderB) Key(r Record) (string, covlens.NodeInfo, error) {
	if r.Kind == KindAssertionBin {
		tail, err := b.expr.tail(r, r.Scope)
		if err != nil {
			return "", covlens.NodeInfo{}, err
		}
		scope := ensureTrailingSlash(stripTrailingMethod(sanitize(r.Scope)))
		return scope + tail, infoFromRecord(r), nil
	}

	scope := r.InstanceScope
	if scope == "" {
		scope = r.DesignUnitScope
	}
	if scope == "" {
		scope = r.FileScope
	}

	tail, err := b.expr.tail(r, scope)
	if err != nil {
		return "", covlens.NodeInfo{}, err
	}
	return ensureTrailingSlash(sanitize(scope)) + tail, infoFromRecord(r), nil
}
