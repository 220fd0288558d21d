package covlens

// ScopeKind selects which of TopTree's three inner trees an insertion
// or lookup targets.
type ScopeKind int

const (
	ScopeFile ScopeKind = iota
	ScopeDesignUnit
	ScopeInstance
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeDesignUnit:
		return "du"
	case ScopeInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// SelectMask controls which of TopTree's trees RunSingle considers,
// tried in the fixed priority order instance, du, file.
type SelectMask int

const (
	SelectInstance SelectMask = 1 << 0
	SelectDesignUnit SelectMask = 1 << 1
	SelectFile SelectMask = 1 << 2

	SelectAll = SelectInstance | SelectDesignUnit | SelectFile
)

// TopTree wraps three independent ExclusionTrees, one per scope kind,
// and a monotonic count of everything ever inserted.
type TopTree struct {
	file       *ExclusionTree
	designUnit *ExclusionTree
	instance   *ExclusionTree

	ExclCount int
}

// NewTopTree returns an empty TopTree.
func NewTopTree() *TopTree {
	return &TopTree{
		file:       NewExclusionTree(),
		designUnit: NewExclusionTree(),
		instance:   NewExclusionTree(),
	}
}

// Tree exposes the inner ExclusionTree for kind, mainly for reporting
// and tests; insert/lookup traffic should go through Insert/RunSingle/
// RunTriple so ExclCount stays accurate.
func (t *TopTree) Tree(kind ScopeKind) *ExclusionTree {
	switch kind {
	case ScopeFile:
		return t.file
	case ScopeDesignUnit:
		return t.designUnit
	case ScopeInstance:
		return t.instance
	default:
		return nil
	}
}

// Insert routes path to the tree selected by kind.
func (t *TopTree) Insert(path string, kind ScopeKind, info NodeInfo, expanded bool) {
	t.ExclCount++
	if tree := t.Tree(kind); tree != nil {
		tree.Insert(path, info, expanded)
	}
}

// RunSingle searches the trees selected by mask in priority order
// instance, du, file, stopping at the first match. On a match it
// records hitDelta and folds in the walker-supplied info. It reports
// whether any tree matched.
func (t *TopTree) RunSingle(path string, hitDelta int64, info NodeInfo, mask SelectMask) bool {
	if path == "" {
		return false
	}
	if mask&SelectInstance != 0 {
		if n, ok := t.instance.Find(path); ok {
			n.recordHit(hitDelta, info)
			return true
		}
	}
	if mask&SelectDesignUnit != 0 {
		if n, ok := t.designUnit.Find(path); ok {
			n.recordHit(hitDelta, info)
			return true
		}
	}
	if mask&SelectFile != 0 {
		if n, ok := t.file.Find(path); ok {
			n.recordHit(hitDelta, info)
			return true
		}
	}
	return false
}

// RunTriple searches all three trees independently with the
// corresponding key from paths (ordered instance, du, file) and
// updates every tree that matches, so a path naming both an instance
// and its design unit gets both leaves credited.
func (t *TopTree) RunTriple(paths [3]string, hitDelta int64, info NodeInfo) (instanceHit, duHit, fileHit bool) {
	if paths[0] != "" {
		if n, ok := t.instance.Find(paths[0]); ok {
			n.recordHit(hitDelta, info)
			instanceHit = true
		}
	}
	if paths[1] != "" {
		if n, ok := t.designUnit.Find(paths[1]); ok {
			n.recordHit(hitDelta, info)
			duHit = true
		}
	}
	if paths[2] != "" {
		if n, ok := t.file.Find(paths[2]); ok {
			n.recordHit(hitDelta, info)
			fileHit = true
		}
	}
	return
}

// Traverse iterates the three trees in report order (file, du,
// instance), bracketing each with the Reporter lifecycle calls.
func (t *TopTree) Traverse(check Checker, rep Reporter) {
	rep.Start()
	rep.Title()

	for _, kind := range []ScopeKind{ScopeFile, ScopeDesignUnit, ScopeInstance} {
		tree := t.Tree(kind)
		if tree.Empty() {
			continue
		}
		rep.TreeStart(kind.String())
		tree.Iterate(check, rep)
		rep.TreeEnd()
	}

	rep.End()
}
