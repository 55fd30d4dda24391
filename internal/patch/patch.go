// Package patch mutates files under a base directory according to a patch
// descriptor: a line-range replacement, a unified-diff patch set, or a whole
// materialized structure. Detectable precondition violations fail loudly
// before anything is written.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vovaauer/f2t2f/internal/fsops"
	"github.com/vovaauer/f2t2f/internal/model"
)

// Apply applies one patch descriptor against baseDir.
func Apply(baseDir string, p model.Patch) error {
	switch p := p.(type) {
	case model.ReplaceLines:
		return replaceLines(baseDir, p)
	case model.UnifiedDiff:
		return applyUnified(baseDir, p)
	case model.FullStructure:
		return materialize(baseDir, p.Root)
	default:
		return fmt.Errorf("unsupported patch type %T", p)
	}
}

// materialize writes a parsed tree under baseDir, with the name-collision
// rule: a root named like baseDir itself writes into baseDir's parent
// instead of nesting a duplicate folder.
func materialize(baseDir string, root *model.Node) error {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}
	target := baseDir
	if filepath.Base(abs) == root.Name {
		target = filepath.Dir(abs)
	}
	return fsops.Materialize(root, target)
}

func replaceLines(baseDir string, p model.ReplaceLines) error {
	target := filepath.Join(baseDir, filepath.FromSlash(p.Path))
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.NotFoundError{Path: p.Path}
		}
		return fmt.Errorf("read %s: %w", target, err)
	}

	lines := splitLines(string(data))
	n := len(lines)
	if p.StartLine < 1 || p.EndLine < p.StartLine || p.EndLine > n {
		return &model.OutOfRangeError{
			Path:      p.Path,
			StartLine: p.StartLine,
			EndLine:   p.EndLine,
			LineCount: n,
		}
	}

	replacement := splitLines(p.NewContent)
	out := make([]string, 0, n-(p.EndLine-p.StartLine+1)+len(replacement))
	out = append(out, lines[:p.StartLine-1]...)
	out = append(out, replacement...)
	out = append(out, lines[p.EndLine:]...)

	content := ""
	if len(out) > 0 {
		content = strings.Join(out, "\n") + "\n"
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// splitLines splits text into lines without a trailing empty element for a
// final newline: "a\nb\n" and "a\nb" are both two lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
