package pathbuilder

import (
	"testing"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestBuilderABlockTail(t *testing.T) {
	b := &BuilderA{}
	keys, info, err := b.Keys(Record{
		Kind:            KindBlock,
		InstanceScope:   "/top::u1",
		DesignUnitScope: "alu",
		SourceLine:      42,
		HitCount:        3,
	})
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := [3]string{"top/u1/42/b/", "alu/42/b/", ""}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if info.HitCount != 3 || !info.Found {
		t.Errorf("got info %+v", info)
	}
}

func TestBuilderAAllFalseBranch(t *testing.T) {
	b := &BuilderA{}
	keys, _, err := b.Keys(Record{Kind: KindAllFalseBranch, InstanceScope: "top/u1", SourceLine: 10})
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if keys[0] != "top/u1/10/all_false_branch/b/" {
		t.Errorf("got %q", keys[0])
	}
}

func TestBuilderAExpressionIndexResetsOnScopeChange(t *testing.T) {
	b := &BuilderA{}
	tails := []string{}
	records := []Record{
		{Kind: KindExpression, InstanceScope: "top/u1", Name: "e1", SourceLine: 10},
		{Kind: KindExpression, InstanceScope: "top/u1", Name: "e1", SourceLine: 10},
		{Kind: KindExpression, InstanceScope: "top/u2", Name: "e1", SourceLine: 10},
	}
	for _, r := range records {
		keys, _, err := b.Keys(r)
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		tails = append(tails, keys[0])
	}
	want := []string{"top/u1/10/0/m/", "top/u1/10/1/m/", "top/u2/10/0/m/"}
	if diff := cmp.Diff(want, tails); diff != "" {
		t.Errorf("minterm sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderAExpressionUnknownMarkerResetsMinterm(t *testing.T) {
	b := &BuilderA{}
	records := []Record{
		{Kind: KindExpression, InstanceScope: "top/u1", Name: "e1", SourceLine: 10},
		{Kind: KindExpression, InstanceScope: "top/u1", Name: "?", SourceLine: 10},
	}
	var got []string
	for _, r := range records {
		keys, _, _ := b.Keys(r)
		got = append(got, keys[0])
	}
	want := []string{"top/u1/10/0/m/", "top/u1/10/0/m/"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderAFSMAndCovergroupTails(t *testing.T) {
	b := &BuilderA{}
	stateKeys, _, _ := b.Keys(Record{Kind: KindFSMState, InstanceScope: "top/u1", FSMName: "fsm0", StateName: "IDLE"})
	if stateKeys[0] != "top/u1/fsm0/states/IDLE/s/" {
		t.Errorf("got %q", stateKeys[0])
	}
	transKeys, _, _ := b.Keys(Record{Kind: KindFSMTransition, InstanceScope: "top/u1", FSMName: "fsm0", FromState: "IDLE", ToState: "BUSY"})
	if transKeys[0] != "top/u1/fsm0/trans/IDLE/BUSY/t/" {
		t.Errorf("got %q", transKeys[0])
	}
	vKeys, _, _ := b.Keys(Record{Kind: KindCovergroupBin, InstanceScope: "top/u1", Covergroup: "cg", Coverpoint: "cp", Bin: "bin[3]", RepeatIndex: 0})
	if vKeys[0] != "top/u1/cg/cp/bin/0/v/" {
		t.Errorf("got %q", vKeys[0])
	}
}

func TestBuilderAAssertionTailStripsMethodAndBrackets(t *testing.T) {
	b := &BuilderA{}
	keys, _, _ := b.Keys(Record{
		Kind:      KindAssertionBin,
		Scope:     "/top::u1[3]/check()",
		Assertion: "never_x",
	})
	if keys[0] != "top/u1/never_x/a/" {
		t.Errorf("got %q", keys[0])
	}
}

func TestBuilderBSingleKey(t *testing.T) {
	b := &BuilderB{}
	key, info, err := b.Key(Record{Kind: KindBlock, InstanceScope: "top::u1", SourceLine: 7, HitCount: 0})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if key != "top/u1/7/b/" {
		t.Errorf("got %q", key)
	}
	if info.Found != true || info.HitCount != 0 {
		t.Errorf("got info %+v", info)
	}
}

// TestBuilderAInfoIgnoresProvenanceFields checks the NodeInfo Keys
// derives from a Record against only the fields a builder actually
// populates (Name, Line, HitCount, Found); provenance fields such as
// Kind/Location/Comment/Negated are the assembler's responsibility, not
// the builder's, and are excluded from the comparison.
func TestBuilderAInfoIgnoresProvenanceFields(t *testing.T) {
	b := &BuilderA{}
	_, info, err := b.Keys(Record{Kind: KindBlock, InstanceScope: "top/u1", SourceLine: 9, HitCount: 4, Name: "blk"})
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}

	want := covlens.NodeInfo{Name: "blk", Line: 9, HitCount: 4, Found: true, Kind: "ignored", Location: "ignored"}
	ignoreProvenance := cmpopts.IgnoreFields(covlens.NodeInfo{}, "Kind", "Location", "Negated", "Generator", "GeneratorLine", "Comment", "Expanded")
	if diff := cmp.Diff(want, info, ignoreProvenance); diff != "" {
		t.Errorf("info mismatch ignoring provenance fields (-want +got):\n%s", diff)
	}
}

func TestUnrecognizedKindIsError(t *testing.T) {
	b := &BuilderB{}
	if _, _, err := b.Key(Record{Kind: RecordKind(99), InstanceScope: "top"}); err == nil {
		t.Errorf("expected an error for an unrecognized record kind")
	}
}
