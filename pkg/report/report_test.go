package report

import (
	"strings"
	"testing"

	"github.com/covlens/covlens/pkg/covlens"
)

func TestLogReporterFormatsFailAndMissingOnly(t *testing.T) {
	var buf strings.Builder
	r := NewLogReporter(&buf, "regress_nightly")

	tree := covlens.NewTopTree()
	tree.Insert("top/u1/5/b/", covlens.ScopeInstance, covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1"}, false)
	tree.Insert("top/u1/6/b/", covlens.ScopeInstance, covlens.NodeInfo{Kind: "stmt", Name: "6", Location: "top/u1"}, false)
	tree.Tree(covlens.ScopeInstance).Insert("top/u1/5/b/", covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1", Found: true, HitCount: 0}, false)

	tree.Traverse(covlens.DefaultChecker, r)
	out := buf.String()

	if !strings.Contains(out, "Test: regress_nightly") {
		t.Errorf("missing test banner, got %q", out)
	}
	if !strings.Contains(out, "*CL_ITEM_NOT_COVERED_ERR") {
		t.Errorf("expected a not-covered line for the hit-zero leaf, got %q", out)
	}
	if !strings.Contains(out, "*CL_ITEM_NOT_FOUND_ERR") {
		t.Errorf("expected a not-found line for the never-matched leaf, got %q", out)
	}
	if !strings.Contains(out, "*CL_ERR Total error count: 2!") {
		t.Errorf("expected an aggregate error count of 2, got %q", out)
	}
	if !strings.Contains(out, "instance:\n") {
		t.Errorf("expected an instance: heading, got %q", out)
	}
	if !strings.Contains(out, "  *CL_ITEM_NOT_COVERED_ERR") && !strings.Contains(out, "  *CL_ITEM_NOT_FOUND_ERR") {
		t.Errorf("expected leaf lines to be indented under the tree heading, got %q", out)
	}
}

func TestLogReporterSilentOnFullySatisfiedTree(t *testing.T) {
	var buf strings.Builder
	r := NewLogReporter(&buf, "")

	tree := covlens.NewTopTree()
	tree.Insert("top/u1/5/b/", covlens.ScopeInstance, covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1"}, false)
	tree.Tree(covlens.ScopeInstance).Insert("top/u1/5/b/", covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1", Found: true, HitCount: 3}, false)

	tree.Traverse(covlens.DefaultChecker, r)
	out := buf.String()

	if strings.Contains(out, "CL_ITEM") {
		t.Errorf("satisfied leaf should not be reported, got %q", out)
	}
	if strings.Contains(out, "Total error count") {
		t.Errorf("zero-error run should not print a total, got %q", out)
	}
}

func TestLogReporterNegatedLeafSwapsFailToDefault(t *testing.T) {
	var buf strings.Builder
	r := NewLogReporter(&buf, "")

	tree := covlens.NewTopTree()
	info := covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1", Negated: true, Found: true, HitCount: 0}
	tree.Insert("top/u1/5/b/", covlens.ScopeInstance, info, false)
	// Found but never hit: DefaultChecker says "fail", negation swaps it to "default".
	tree.Traverse(covlens.DefaultChecker, r)

	if strings.Contains(buf.String(), "CL_ITEM_NOT_COVERED_ERR") {
		t.Errorf("negated never-hit leaf should report as satisfied, got %q", buf.String())
	}
}

func TestHTMLReporterRendersTableWithRowsPerClass(t *testing.T) {
	var buf strings.Builder
	r := NewHTMLReporter(&buf, "nightly & co")

	tree := covlens.NewTopTree()
	tree.Insert("top/u1/5/b/", covlens.ScopeInstance, covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1"}, false)

	tree.Traverse(covlens.DefaultChecker, r)
	out := buf.String()

	if !strings.Contains(out, "<html>") || !strings.Contains(out, "</html>") {
		t.Errorf("expected a well-formed HTML document, got %q", out)
	}
	if !strings.Contains(out, "nightly &amp; co") {
		t.Errorf("expected the test name to be HTML-escaped, got %q", out)
	}
	if !strings.Contains(out, "<table") || !strings.Contains(out, "not found") {
		t.Errorf("expected a table row for the never-matched leaf, got %q", out)
	}
	if !strings.Contains(out, "Total error count: 1") {
		t.Errorf("expected an aggregate error count, got %q", out)
	}
}

func TestHTMLReporterOmitsTableForSatisfiedTree(t *testing.T) {
	var buf strings.Builder
	r := NewHTMLReporter(&buf, "")

	tree := covlens.NewTopTree()
	tree.Insert("top/u1/5/b/", covlens.ScopeInstance, covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1"}, false)
	tree.Tree(covlens.ScopeInstance).Insert("top/u1/5/b/", covlens.NodeInfo{Kind: "stmt", Name: "5", Location: "top/u1", Found: true, HitCount: 1}, false)

	tree.Traverse(covlens.DefaultChecker, r)
	out := buf.String()

	if strings.Contains(out, "<table") {
		t.Errorf("fully satisfied tree should render no table, got %q", out)
	}
	if strings.Contains(out, "Total error count") {
		t.Errorf("zero-error run should print no total, got %q", out)
	}
}
