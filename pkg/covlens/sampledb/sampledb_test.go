package sampledb

import (
	"context"
	"strings"
	"testing"

	"github.com/covlens/covlens/pkg/covlens/walker"
)

const fixture = `[
  {"reason": "init_db"},
  {"reason": "du"},
  {"reason": "cv_bin", "record": {"kind": "block", "instance_scope": "top/u1", "source_line": 5, "hit_count": 2}},
  {"reason": "cv_bin", "record": {"kind": "covergroup_bin", "instance_scope": "top", "covergroup": "cg", "coverpoint": "cp", "bin": "bin0", "hit_count": 1}},
  {"reason": "end_db"}
]`

func TestLoadAndWalkReplaysEventsInOrder(t *testing.T) {
	db, err := Load(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var got []walker.Reason
	err = db.Walk(context.Background(), func(cb walker.Callback) error {
		got = append(got, cb.Reason)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []walker.Reason{walker.ReasonInitDB, walker.ReasonDU, walker.ReasonCVBin, walker.ReasonCVBin, walker.ReasonEndDB}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got reason %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWalkRejectsUnknownReason(t *testing.T) {
	db, err := Load(strings.NewReader(`[{"reason": "bogus"}]`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = db.Walk(context.Background(), func(walker.Callback) error { return nil })
	if err == nil {
		t.Fatalf("expected an error for an unknown reason")
	}
}

func TestWalkRejectsUnknownRecordKind(t *testing.T) {
	db, err := Load(strings.NewReader(`[{"reason": "cv_bin", "record": {"kind": "bogus"}}]`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = db.Walk(context.Background(), func(walker.Callback) error { return nil })
	if err == nil {
		t.Fatalf("expected an error for an unknown record kind")
	}
}
