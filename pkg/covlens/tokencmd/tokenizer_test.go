package tokencmd

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openconfig/gnmi/errdiff"
)

func checkCfg() Config {
	return Config{Verb: "check", FlagIntroducer: "-", FlagDelim: " "}
}

func TestParseBasicCommand(t *testing.T) {
	src := `check -p top/u1 -k b -t 10
check -p top/u2 -k b -t 11
`
	cmds, err := Parse(checkCfg(), nil, strings.NewReader(src), "t.chk")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if diff := cmp.Diff([]string{"top/u1"}, cmds[0].Flags["p"]); diff != "" {
		t.Errorf("-p mismatch (-want +got):\n%s", diff)
	}
	if cmds[0].Line != 1 || cmds[1].Line != 2 {
		t.Errorf("got lines %d,%d, want 1,2", cmds[0].Line, cmds[1].Line)
	}
}

func TestParseSkipsLineAndBlockComments(t *testing.T) {
	src := `# leading comment
check -p top/u1 -k b -t 10 # trailing comment
/* a block
   comment */
check -p top/u2 -k b -t 20
`
	cmds, err := Parse(checkCfg(), nil, strings.NewReader(src), "t.chk")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[1].Line != 5 {
		t.Errorf("block comment broke line tracking: got line %d, want 5", cmds[1].Line)
	}
}

func TestParseMultiWordVerb(t *testing.T) {
	cfg := Config{Verb: "coverage exclude", FlagIntroducer: "-", FlagDelim: " "}
	src := `coverage exclude -p top/u1 -k b -t 10
`
	cmds, err := Parse(cfg, nil, strings.NewReader(src), "t.excl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	if diff := cmp.Diff([]string{"top/u1"}, cmds[0].Flags["p"]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQuoteAndBraceReaders(t *testing.T) {
	readers := map[byte]ArgReader{
		'"': QuoteReader,
		'{': BraceReader,
	}
	src := `check -p top/u1 -comment "has # not a comment" -tags {a b c}
`
	cmds, err := Parse(checkCfg(), readers, strings.NewReader(src), "t.chk")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cmds[0].Flags["comment"]; len(got) != 1 || got[0] != "has # not a comment" {
		t.Errorf("got -comment %v", got)
	}
	if got := cmds[0].Flags["tags"]; len(got) != 1 || got[0] != "a b c" {
		t.Errorf("got -tags %v", got)
	}
}

func TestParseFlagWithNoArguments(t *testing.T) {
	src := `check -p top/u1 -n -k b -t 10
`
	cmds, err := Parse(checkCfg(), nil, strings.NewReader(src), "t.chk")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args, ok := cmds[0].Flags["n"]
	if !ok {
		t.Fatalf("-n flag missing from Flags map")
	}
	if len(args) != 0 {
		t.Errorf("got -n args %v, want none", args)
	}
}

func TestParseStopToken(t *testing.T) {
	cfg := checkCfg()
	cfg.StopToken = "end"
	src := `check -p top/u1 -k b -t 10
end
check -p top/u2 -k b -t 11
`
	cmds, err := Parse(cfg, nil, strings.NewReader(src), "t.chk")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands after stop token, want 1", len(cmds))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		desc    string
		src     string
		wantErr string
	}{
		{"bad flag introducer", "check p top/u1\n", "expected flag introducer"},
		{"missing command", "-p top/u1\n", "expected command"},
		{"unterminated quote", `check -comment "oops` + "\n", "unterminated quoted string"},
	}
	readers := map[byte]ArgReader{'"': QuoteReader}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Parse(checkCfg(), readers, strings.NewReader(tt.src), "t.chk")
			if diff := errdiff.Substring(err, tt.wantErr); diff != "" {
				t.Errorf(diff)
			}
		})
	}
}
