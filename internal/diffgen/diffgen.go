// Package diffgen compares two tree models and renders unified diffs for
// files whose content differs.
package diffgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/vovaauer/f2t2f/internal/model"
)

const contextLines = 3

// Compare renders one unified diff per file that differs between the two
// trees, plus notices for files present on only one side. Paths are
// root-relative so trees captured under different root names still compare
// file-for-file. Output is ordered lexicographically by path.
func Compare(before, after *model.Node) (string, error) {
	a := flatten(before)
	b := flatten(after)

	paths := make(map[string]struct{}, len(a)+len(b))
	for p := range a {
		paths[p] = struct{}{}
	}
	for p := range b {
		paths[p] = struct{}{}
	}
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var out strings.Builder
	for _, p := range ordered {
		oldContent, inA := a[p]
		newContent, inB := b[p]
		switch {
		case !inA:
			fmt.Fprintf(&out, "Only in %s: %s\n", after.Name, p)
		case !inB:
			fmt.Fprintf(&out, "Only in %s: %s\n", before.Name, p)
		case oldContent != newContent:
			text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        splitAfterLines(oldContent),
				B:        splitAfterLines(newContent),
				FromFile: "a/" + p,
				ToFile:   "b/" + p,
				Context:  contextLines,
			})
			if err != nil {
				return "", fmt.Errorf("diff %s: %w", p, err)
			}
			out.WriteString(text)
		}
	}
	return out.String(), nil
}

// splitAfterLines splits content into newline-terminated lines. Unlike
// difflib.SplitLines it adds no phantom empty line, so the emitted diffs
// stay applicable by the patch engine. A final line without a newline is
// terminated anyway: difflib writes lines verbatim, and an unterminated
// line would run into the next diff line.
func splitAfterLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

// flatten maps root-relative POSIX paths (root segment excluded) to file
// content.
func flatten(root *model.Node) map[string]string {
	type item struct {
		node   *model.Node
		prefix string
	}
	files := make(map[string]string)
	stack := []item{{root, ""}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, c := range it.node.Children {
			path := c.Name
			if it.prefix != "" {
				path = it.prefix + "/" + c.Name
			}
			if c.IsFolder() {
				stack = append(stack, item{c, path})
				continue
			}
			files[path] = c.Content
		}
	}
	return files
}
