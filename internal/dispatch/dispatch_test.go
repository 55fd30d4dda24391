package dispatch_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/vovaauer/f2t2f/internal/codec"
	"github.com/vovaauer/f2t2f/internal/dispatch"
	"github.com/vovaauer/f2t2f/internal/model"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return target
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func makeDiff(t *testing.T, path, old, new string) string {
	t.Helper()
	lines := func(s string) []string {
		if s == "" {
			return nil
		}
		parts := strings.SplitAfter(s, "\n")
		if parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		return parts
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines(old),
		B:        lines(new),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func TestApplyFullStructure(t *testing.T) {
	root := model.NewFolder("proj",
		model.NewFile("readme.md", "# proj\n"),
		// Block markers inside file content must not demote the artifact
		// to the block-command strategy.
		model.NewFile("notes.txt", ">>> file: fake.txt\nnot a block\n<<<\n"),
	)
	artifact, err := codec.Serialize(root, codec.FormatV1)
	if err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	if err := dispatch.Apply(artifact, dest); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "proj", "readme.md")); got != "# proj\n" {
		t.Errorf("readme.md = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "proj", "notes.txt")); !strings.Contains(got, ">>> file: fake.txt") {
		t.Errorf("notes.txt = %q, block markers lost", got)
	}
}

func TestApplyFencedArtifact(t *testing.T) {
	root := model.NewFolder("proj", model.NewFile("a.txt", "a\n"))
	artifact, err := codec.Serialize(root, codec.FormatV1)
	if err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	input := "```json\n" + artifact + "```\n"
	if err := dispatch.Apply(input, dest); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "proj", "a.txt")); got != "a\n" {
		t.Errorf("a.txt = %q, want %q", got, "a\n")
	}
}

func TestApplyNameCollision(t *testing.T) {
	root := model.NewFolder("proj", model.NewFile("a.txt", "a\n"))
	artifact, err := codec.Serialize(root, codec.FormatV2)
	if err != nil {
		t.Fatal(err)
	}

	// Destination is itself named proj: the tree writes into it directly
	// rather than nesting proj/proj.
	dest := filepath.Join(t.TempDir(), "proj")
	if err := os.MkdirAll(dest, 0755); err != nil {
		t.Fatal(err)
	}
	if err := dispatch.Apply(artifact, dest); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "a.txt")); got != "a\n" {
		t.Errorf("a.txt = %q, want %q", got, "a\n")
	}
	if _, err := os.Stat(filepath.Join(dest, "proj")); !os.IsNotExist(err) {
		t.Error("nested proj/proj was created")
	}
}

func TestApplySingleDiff(t *testing.T) {
	const old = "a\nb\nc\n"
	const new = "a\nB\nc\n"

	t.Run("bare", func(t *testing.T) {
		dest := t.TempDir()
		target := writeFile(t, dest, "f.txt", old)

		if err := dispatch.Apply(makeDiff(t, "f.txt", old, new), dest); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := readFile(t, target); got != new {
			t.Errorf("f.txt = %q, want %q", got, new)
		}
	})

	t.Run("fenced", func(t *testing.T) {
		dest := t.TempDir()
		target := writeFile(t, dest, "f.txt", old)

		input := "```diff\n" + makeDiff(t, "f.txt", old, new) + "```\n"
		if err := dispatch.Apply(input, dest); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := readFile(t, target); got != new {
			t.Errorf("f.txt = %q, want %q", got, new)
		}
	})

	t.Run("conflict is fatal", func(t *testing.T) {
		dest := t.TempDir()
		writeFile(t, dest, "f.txt", "unrelated\ncontent\nhere\n")

		err := dispatch.Apply(makeDiff(t, "f.txt", old, new), dest)
		var conflict *model.ApplyConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ApplyConflictError, got %v", err)
		}
	})
}

func TestApplyBlocks(t *testing.T) {
	t.Run("file patch diff sequence", func(t *testing.T) {
		dest := t.TempDir()
		writeFile(t, dest, "existing.txt", "l1\nl2\nl3\n")
		writeFile(t, dest, "code.py", "x = 1\ny = 2\n")

		diff := makeDiff(t, "code.py", "x = 1\ny = 2\n", "x = 1\ny = 3\n")
		input := strings.Join([]string{
			">>> file: sub/new.txt",
			"hello",
			"<<<",
			">>> patch: existing.txt",
			"lines: 2-3",
			"---",
			"middle",
			"<<<",
			">>> diff: code.py",
			strings.TrimSuffix(diff, "\n"),
			"<<<",
			"",
		}, "\n")

		if err := dispatch.Apply(input, dest); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := readFile(t, filepath.Join(dest, "sub", "new.txt")); got != "hello" {
			t.Errorf("new.txt = %q, want %q", got, "hello")
		}
		if got := readFile(t, filepath.Join(dest, "existing.txt")); got != "l1\nmiddle\n" {
			t.Errorf("existing.txt = %q, want %q", got, "l1\nmiddle\n")
		}
		if got := readFile(t, filepath.Join(dest, "code.py")); got != "x = 1\ny = 3\n" {
			t.Errorf("code.py = %q, want %q", got, "x = 1\ny = 3\n")
		}
	})

	t.Run("first failure aborts the rest", func(t *testing.T) {
		dest := t.TempDir()
		input := strings.Join([]string{
			">>> file: first.txt",
			"ok",
			"<<<",
			">>> patch: missing.txt",
			"lines: 1-1",
			"---",
			"x",
			"<<<",
			">>> file: never.txt",
			"unreached",
			"<<<",
			"",
		}, "\n")

		err := dispatch.Apply(input, dest)
		var nf *model.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		// The block before the failure stays applied.
		if got := readFile(t, filepath.Join(dest, "first.txt")); got != "ok" {
			t.Errorf("first.txt = %q, want %q", got, "ok")
		}
		if _, err := os.Stat(filepath.Join(dest, "never.txt")); !os.IsNotExist(err) {
			t.Error("block after the failure was applied")
		}
	})

	t.Run("unterminated block after valid ones rejects the input", func(t *testing.T) {
		dest := t.TempDir()
		input := strings.Join([]string{
			">>> file: first.txt",
			"ok",
			"<<<",
			">>> patch: broken.txt",
			"lines: 1-1",
			"---",
			"never closed",
			"",
		}, "\n")

		err := dispatch.Apply(input, dest)
		var fe *model.FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FormatError, got %v", err)
		}
		// Rejected at scan time: nothing is applied, not even the valid
		// leading block.
		if _, err := os.Stat(filepath.Join(dest, "first.txt")); !os.IsNotExist(err) {
			t.Error("block from a rejected input was applied")
		}
	})

	t.Run("patch block without lines token", func(t *testing.T) {
		input := strings.Join([]string{
			">>> patch: f.txt",
			"---",
			"x",
			"<<<",
			"",
		}, "\n")

		err := dispatch.Apply(input, t.TempDir())
		var fe *model.FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FormatError, got %v", err)
		}
	})

	t.Run("fenced file body is unwrapped", func(t *testing.T) {
		dest := t.TempDir()
		input := strings.Join([]string{
			">>> file: script.py",
			"```python",
			"print('hi')",
			"```",
			"<<<",
			"",
		}, "\n")

		if err := dispatch.Apply(input, dest); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := readFile(t, filepath.Join(dest, "script.py")); got != "print('hi')\n" {
			t.Errorf("script.py = %q, want %q", got, "print('hi')\n")
		}
	})
}

func TestApplyUnrecognized(t *testing.T) {
	for _, input := range []string{
		"",
		"just some prose, nothing actionable",
		">>> file: unterminated.txt\nbody with no closing marker\n",
	} {
		err := dispatch.Apply(input, t.TempDir())
		var fe *model.FormatError
		if !errors.As(err, &fe) {
			t.Errorf("input %q: expected FormatError, got %v", input, err)
		}
	}
}
