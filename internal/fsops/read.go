// Package fsops reads a directory tree into the tree model and writes a
// tree model back to disk.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/vovaauer/f2t2f/internal/filter"
	"github.com/vovaauer/f2t2f/internal/model"
)

// BinarySentinel replaces the content of files that do not decode as text.
// The loss is one-way: no attempt is made to round-trip binary data.
const BinarySentinel = "[Binary file - content not readable as text]"

type readFrame struct {
	node    *model.Node
	abs     string
	rel     string
	entries []os.DirEntry
	next    int
	matched bool
}

// ReadTree captures the directory at root into a tree model. ignore is the
// global glob pattern list; a well-formed rule file at the root replaces it
// for this whole read. Directory entries are visited in lexicographic order.
func ReadTree(root string, ignore []string) (*model.Node, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &model.NotFoundError{Path: root}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	m := filter.NewMatcher(abs, ignore)

	rootEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", abs, err)
	}
	rootNode := model.NewFolder(filepath.Base(abs))

	// Explicit work stack instead of recursion; attachment happens when a
	// frame pops so whitelist pruning can see the surviving children.
	stack := []*readFrame{{node: rootNode, abs: abs, entries: rootEntries}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next >= len(f.entries) {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				break
			}
			keep := true
			if m.RuleMode() && m.RuleType() == filter.Whitelist {
				keep = f.matched || len(f.node.Children) > 0
			}
			if keep {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, f.node)
			}
			continue
		}

		entry := f.entries[f.next]
		f.next++

		name := entry.Name()
		childAbs := filepath.Join(f.abs, name)
		childRel := name
		if f.rel != "" {
			childRel = f.rel + "/" + name
		}
		if m.RuleMode() && childRel == filter.RuleFileName {
			continue
		}
		isDir := entry.IsDir()

		include, descend := decide(m, childAbs, childRel, name, isDir)
		if !include && !descend {
			continue
		}
		if isDir {
			entries, err := os.ReadDir(childAbs)
			if err != nil {
				return nil, fmt.Errorf("read directory %s: %w", childAbs, err)
			}
			stack = append(stack, &readFrame{
				node:    model.NewFolder(name),
				abs:     childAbs,
				rel:     childRel,
				entries: entries,
				matched: include,
			})
			continue
		}
		f.node.Children = append(f.node.Children, model.NewFile(name, readContent(childAbs)))
	}

	return rootNode, nil
}

// decide resolves one entry against the active rule source. include means
// the entry itself is admitted; descend means a folder must still be walked
// because surviving descendants would retain it.
func decide(m *filter.Matcher, abs, rel, name string, isDir bool) (include, descend bool) {
	if !m.RuleMode() {
		if m.NameIgnored(name) {
			return false, false
		}
		return true, isDir
	}
	matched := m.Matched(abs, rel, name)
	if m.RuleType() == filter.Blacklist {
		if matched {
			return false, false
		}
		return true, isDir
	}
	// Whitelist: files need a match; an unmatched folder is walked anyway
	// and pruned later if nothing inside survives.
	if isDir {
		return matched, true
	}
	return matched, false
}

func readContent(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("[Error reading file: %v]", err)
	}
	if !utf8.Valid(data) {
		return BinarySentinel
	}
	return string(data)
}
