package rangelist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpandSingletonsAndIntervals(t *testing.T) {
	got, err := Expand([]string{"39", "42-45"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []Line{
		{39, false},
		{42, true}, {43, true}, {44, true}, {45, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandCommaSeparatedWithinOneArg(t *testing.T) {
	got, err := Expand([]string{"10,20-22,30"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []Line{{10, false}, {20, true}, {21, true}, {22, true}, {30, false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandRejectsBadInterval(t *testing.T) {
	if _, err := Expand([]string{"45-42"}); err == nil {
		t.Errorf("expected an error for a descending interval")
	}
	if _, err := Expand([]string{"abc"}); err == nil {
		t.Errorf("expected an error for a non-numeric line")
	}
}
