package vplan

import (
	"strings"
	"testing"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/google/go-cmp/cmp"
)

const samplePlan = `<vplan>
  <rootElements>
    <section>
      <name>alu</name>
      <metricsPort>
        <name>core</name>
        <metricsTypes>
          <block/>
          <expression/>
        </metricsTypes>
      </metricsPort>
      <section>
        <name>fsm_ctrl</name>
        <metricsPort>
          <name>states</name>
          <metricsTypes>
            <fsm-state/>
          </metricsTypes>
        </metricsPort>
      </section>
    </section>
  </rootElements>
</vplan>`

func TestParseExtractsDirectivesFromNestedSections(t *testing.T) {
	got, err := Parse(strings.NewReader(samplePlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Directive{
		{Path: "alu/core", Kind: "stmt"},
		{Path: "alu/core", Kind: "expr"},
		{Path: "alu/fsm_ctrl/states", Kind: "fsm"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertProducesScopeWideWildcards(t *testing.T) {
	directives, err := Parse(strings.NewReader(samplePlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tree := covlens.NewTopTree()
	Insert(tree, directives, covlens.ScopeInstance)

	if _, ok := tree.Tree(covlens.ScopeInstance).Find("alu/core/10/b/"); !ok {
		t.Errorf("expected the stmt wildcard to collapse-match a concrete line")
	}
	if _, ok := tree.Tree(covlens.ScopeInstance).Find("alu/core/10/3/m/"); !ok {
		t.Errorf("expected the expr wildcard to collapse-match a concrete minterm")
	}
	if _, ok := tree.Tree(covlens.ScopeInstance).Find("alu/fsm_ctrl/states/fsm0/states/IDLE/s/"); !ok {
		t.Errorf("expected the fsm wildcard to collapse-match a concrete state leaf")
	}
}
