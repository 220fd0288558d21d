package covlens

import (
	"sort"
	"strings"
)

// ExclusionTree is a prefix tree over "/"-separated path tokens. Every
// inserted check or exclusion occupies exactly one node; a node is a
// "leaf of interest" (excluded == true) regardless of whether it later
// grows children, because a later insertion may extend past it.
type ExclusionTree struct {
	pathLabel string
	children  map[string]*ExclusionTree

	excluded bool
	expanded bool
	found    bool
	timesHit int64
	info     *NodeInfo
}

// NewExclusionTree returns an empty root node.
func NewExclusionTree() *ExclusionTree {
	return newExclusionTree("")
}

func newExclusionTree(label string) *ExclusionTree {
	return &ExclusionTree{
		pathLabel: label,
		children:  map[string]*ExclusionTree{},
	}
}

// Empty reports whether t has no children at all.
func (t *ExclusionTree) Empty() bool {
	return len(t.children) == 0
}

// Excluded reports whether a check was inserted ending at this node.
func (t *ExclusionTree) Excluded() bool { return t.excluded }

// Info returns the NodeInfo stored at t, or nil if t is not excluded.
func (t *ExclusionTree) Info() *NodeInfo { return t.info }

// TimesHit returns the accumulated hit count recorded by the walker.
func (t *ExclusionTree) TimesHit() int64 { return t.timesHit }

// Found reports whether the walker has matched this leaf at least once.
func (t *ExclusionTree) Found() bool { return t.found }

// Insert descends the tree along path's "/"-separated tokens, creating
// child nodes on demand, and marks the terminal node excluded with the
// given info and expanded flag. Re-insertion at the same path
// overwrites the stored NodeInfo.
func (t *ExclusionTree) Insert(path string, info NodeInfo, expanded bool) {
	path = strings.TrimPrefix(path, "/")
	if path != "" && !strings.HasSuffix(path, "/") {
		// Defensive: callers are expected to emit well-formed keys
		// per the path key format; tolerate a missing trailing slash
		// rather than mis-tokenize the final component.
		path += "/"
	}
	t.insert(path, info, expanded)
}

func (t *ExclusionTree) insert(remaining string, info NodeInfo, expanded bool) {
	if remaining == "" {
		t.excluded = true
		t.expanded = expanded
		infoCopy := info
		t.info = &infoCopy
		return
	}
	idx := strings.IndexByte(remaining, '/')
	var token, left string
	if idx < 0 {
		token, left = remaining, ""
	} else {
		token, left = remaining[:idx], remaining[idx+1:]
	}
	child, ok := t.children[token]
	if !ok {
		child = newExclusionTree(token)
		t.children[token] = child
	}
	child.insert(left, info, expanded)
}

// Find looks up path, applying the typed-wildcard fallback: when no
// exact child matches the next token, the class character of the
// remaining path (its final character before the trailing "/", unless
// the just-failed token was itself a single character with nothing
// left, in which case that character) is mapped b->L, m->X, s->F,
// t->F (identity otherwise) and matched against a single-character
// child label. A malformed key (missing trailing "/", or a final token
// that is not one of the single type characters in keyTypeChars) is
// rejected rather than guessing at the legacy indexing rules.
func (t *ExclusionTree) Find(path string) (*ExclusionTree, bool) {
	if path == "" || !strings.HasSuffix(path, "/") {
		return nil, false
	}
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, false
	}
	body := strings.TrimSuffix(path, "/")
	last := body[strings.LastIndexByte(body, '/')+1:]
	if len(last) != 1 || !strings.Contains(keyTypeChars, last) {
		return nil, false
	}
	return t.find(path)
}

// keyTypeChars lists the single characters a well-formed key's final
// token may be.
const keyTypeChars = "bLmXstFva"

func (t *ExclusionTree) find(remaining string) (*ExclusionTree, bool) {
	if remaining == "" {
		if t.excluded {
			return t, true
		}
		return nil, false
	}
	idx := strings.IndexByte(remaining, '/')
	if idx < 0 {
		return nil, false
	}
	token, left := remaining[:idx], remaining[idx+1:]

	if child, ok := t.children[token]; ok {
		return child.find(left)
	}

	class, ok := fallbackClass(token, left)
	if !ok {
		return nil, false
	}
	for label, child := range t.children {
		if len(label) == 1 && label[0] == class {
			if child.excluded {
				return child, true
			}
			return nil, false
		}
	}
	return nil, false
}

// fallbackClass computes the single-byte wildcard class for a failed
// exact match, per ExclusionTree.Find's doc comment.
func fallbackClass(token, left string) (byte, bool) {
	var c byte
	if left == "" {
		if token == "" {
			return 0, false
		}
		c = token[0]
	} else {
		if len(left) < 2 || left[len(left)-1] != '/' {
			return 0, false
		}
		c = left[len(left)-2]
	}
	switch c {
	case 'b':
		return 'L', true
	case 'm':
		return 'X', true
	case 's', 't':
		return 'F', true
	default:
		return c, true
	}
}

// Iterate walks the tree depth-first in sorted token order, computing
// each excluded leaf's report class via check, applying the negation
// swap (fail<->default; "missing" passes through unswapped) and
// emitting the result to rep.
func (t *ExclusionTree) Iterate(check Checker, rep Reporter) {
	labels := make([]string, 0, len(t.children))
	for label := range t.children {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		t.children[label].Iterate(check, rep)
	}

	if !t.excluded || t.info == nil {
		return
	}

	class := check(*t.info)
	if t.info.Negated {
		switch class {
		case "fail":
			class = "default"
		case "default", "":
			class = "fail"
		}
	}
	rep.Format(*t.info, class)
}

// recordHit applies a walker match to t: found<-true, timesHit
// accumulates hitDelta, and the walker-supplied line/name/kind fold
// into the stored leaf's NodeInfo (overriding any placeholder set at
// insertion time).
func (t *ExclusionTree) recordHit(hitDelta int64, info NodeInfo) {
	t.found = true
	t.timesHit += hitDelta
	if t.info == nil {
		return
	}
	t.info.Line = info.Line
	t.info.Name = info.Name
	if info.Kind != "" {
		t.info.Kind = info.Kind
	}
	t.info.Found = true
	t.info.HitCount += hitDelta
}
