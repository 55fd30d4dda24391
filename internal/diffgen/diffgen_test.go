package diffgen_test

import (
	"strings"
	"testing"

	"github.com/vovaauer/f2t2f/internal/diffgen"
	"github.com/vovaauer/f2t2f/internal/model"
	"github.com/vovaauer/f2t2f/internal/patch"
)

func TestCompare(t *testing.T) {
	before := model.NewFolder("proj",
		model.NewFile("same.txt", "unchanged\n"),
		model.NewFile("changed.txt", "a\nb\nc\n"),
		model.NewFolder("sub",
			model.NewFile("gone.txt", "bye\n"),
		),
	)
	after := model.NewFolder("proj",
		model.NewFile("same.txt", "unchanged\n"),
		model.NewFile("changed.txt", "a\nB\nc\n"),
		model.NewFile("added.txt", "new\n"),
	)

	out, err := diffgen.Compare(before, after)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if strings.Contains(out, "same.txt") {
		t.Error("unchanged file appears in output")
	}
	if !strings.Contains(out, "--- a/changed.txt") || !strings.Contains(out, "+++ b/changed.txt") {
		t.Errorf("missing diff headers for changed.txt:\n%s", out)
	}
	if !strings.Contains(out, "-b\n") || !strings.Contains(out, "+B\n") {
		t.Errorf("missing change lines for changed.txt:\n%s", out)
	}
	if !strings.Contains(out, "Only in proj: added.txt") {
		t.Errorf("missing notice for added.txt:\n%s", out)
	}
	if !strings.Contains(out, "Only in proj: sub/gone.txt") {
		t.Errorf("missing notice for sub/gone.txt:\n%s", out)
	}
	// Notices and diffs come out ordered by path.
	if strings.Index(out, "added.txt") > strings.Index(out, "changed.txt") {
		t.Errorf("output not path-ordered:\n%s", out)
	}
}

func TestCompareIdenticalTrees(t *testing.T) {
	tree := model.NewFolder("proj",
		model.NewFile("a.txt", "a\n"),
		model.NewFolder("sub", model.NewFile("b.txt", "b\n")),
	)
	out, err := diffgen.Compare(tree, tree)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if out != "" {
		t.Errorf("identical trees produced output: %q", out)
	}
}

// An emitted diff must parse and apply cleanly with the patch engine.
func TestCompareOutputIsApplicable(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
	}{
		{"trailing newline", "a\nb\nc\n", "a\nB\nc\n"},
		{"no trailing newline", "a\nb\nc", "a\nb\nC"},
		{"grow file", "a\n", "a\nb\nc\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := model.NewFolder("proj", model.NewFile("f.txt", tc.old))
			after := model.NewFolder("proj", model.NewFile("f.txt", tc.new))

			out, err := diffgen.Compare(before, after)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			patches, err := patch.ParseUnified(out)
			if err != nil {
				t.Fatalf("emitted diff does not parse: %v\n%s", err, out)
			}
			if len(patches) != 1 || patches[0].Path != "f.txt" {
				t.Fatalf("unexpected patch set %+v", patches)
			}
		})
	}
}
