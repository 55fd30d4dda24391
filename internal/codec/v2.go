package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vovaauer/f2t2f/internal/model"
)

// MarkerV2 is the header line of the hybrid text format.
const MarkerV2 = "f2t2f-v2"

const (
	separator  = "---"
	filePrefix = ">>> file: "
	blockEnd   = "<<<"
)

type fileEntry struct {
	path    string
	content string
}

// SerializeV2 encodes the tree as the hybrid text format: a header, an
// indented tree listing for orientation, then one delimited block per file.
// Folders are not emitted as blocks; they are implied by the file paths.
// Blocks are sorted by path-segment sequence for deterministic output.
//
// Every block body is the file content followed by exactly one newline
// before the closing marker; ParseV2 strips that newline back off, which
// keeps the round trip exact for content with and without a final newline.
func SerializeV2(root *model.Node) string {
	files := collectFiles(root)
	sort.Slice(files, func(i, j int) bool {
		return segmentLess(files[i].path, files[j].path)
	})

	var b strings.Builder
	b.WriteString(MarkerV2 + "\n")
	b.WriteString(separator + "\n")
	b.WriteString("tree:\n")
	writeListing(&b, root)
	for _, f := range files {
		b.WriteString(separator + "\n")
		b.WriteString(filePrefix + f.path + "\n")
		b.WriteString(f.content)
		b.WriteString("\n")
		b.WriteString(blockEnd + "\n")
	}
	return b.String()
}

func collectFiles(root *model.Node) []fileEntry {
	type item struct {
		node   *model.Node
		prefix string
	}
	var files []fileEntry
	stack := []item{{root, ""}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path := it.node.Name
		if it.prefix != "" {
			path = it.prefix + "/" + it.node.Name
		}
		if !it.node.IsFolder() {
			files = append(files, fileEntry{path: path, content: it.node.Content})
			continue
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], path})
		}
	}
	return files
}

func segmentLess(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

func writeListing(b *strings.Builder, root *model.Node) {
	type item struct {
		node  *model.Node
		depth int
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b.WriteString(strings.Repeat("  ", it.depth))
		if it.node.IsFolder() {
			b.WriteString(it.node.Name + "/\n")
			for i := len(it.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{it.node.Children[i], it.depth + 1})
			}
			continue
		}
		b.WriteString(it.node.Name + "\n")
	}
}

// ParseV2 decodes a v2 artifact. The tree listing is ignored; the folder
// hierarchy is rebuilt from the file block paths alone. An artifact with no
// file blocks falls back to the listing's first line for the root name,
// yielding an empty root folder.
func ParseV2(text string) (*model.Node, error) {
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) || strings.TrimSpace(lines[i]) != MarkerV2 {
		return nil, &model.FormatError{Reason: "not a v2 artifact: missing header marker"}
	}
	i++

	var files []fileEntry
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if !strings.HasPrefix(line, filePrefix) {
			continue
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, filePrefix))
		if path == "" {
			return nil, &model.FormatError{Reason: "file block with empty path"}
		}
		var body []string
		i++
		closed := false
		for ; i < len(lines); i++ {
			if strings.TrimRight(lines[i], "\r") == blockEnd {
				closed = true
				break
			}
			body = append(body, lines[i])
		}
		if !closed {
			return nil, &model.FormatError{Reason: fmt.Sprintf("unterminated file block for %q", path)}
		}
		files = append(files, fileEntry{path: path, content: strings.Join(body, "\n")})
	}

	if len(files) == 0 {
		return parseListingRoot(lines)
	}
	return reconstruct(files)
}

// reconstruct rebuilds the folder hierarchy implied by the file paths,
// creating missing intermediate folders along each path's ancestry. The
// root name is the first path segment shared by all files.
func reconstruct(files []fileEntry) (*model.Node, error) {
	rootName := strings.SplitN(files[0].path, "/", 2)[0]
	root := model.NewFolder(rootName)
	index := map[string]*model.Node{rootName: root}

	for _, f := range files {
		segs := strings.Split(f.path, "/")
		for _, s := range segs {
			if s == "" {
				return nil, &model.FormatError{Reason: fmt.Sprintf("invalid file path %q", f.path)}
			}
		}
		if segs[0] != rootName {
			return nil, &model.FormatError{
				Reason: fmt.Sprintf("file path %q does not share the root segment %q", f.path, rootName),
			}
		}
		if len(segs) == 1 {
			return nil, &model.FormatError{Reason: fmt.Sprintf("file path %q has no parent folder", f.path)}
		}

		parent := root
		prefix := segs[0]
		for _, seg := range segs[1 : len(segs)-1] {
			prefix += "/" + seg
			node, ok := index[prefix]
			if !ok {
				node = model.NewFolder(seg)
				parent.Children = append(parent.Children, node)
				index[prefix] = node
			}
			if !node.IsFolder() {
				return nil, &model.FormatError{Reason: fmt.Sprintf("path %q collides with a file", prefix)}
			}
			parent = node
		}

		name := segs[len(segs)-1]
		if parent.Child(name) != nil {
			return nil, &model.FormatError{Reason: fmt.Sprintf("duplicate file path %q", f.path)}
		}
		parent.Children = append(parent.Children, model.NewFile(name, f.content))
		index[f.path] = parent.Children[len(parent.Children)-1]
	}
	return root, nil
}

// parseListingRoot is the degraded path for an all-empty-folders capture:
// only the root name survives, taken from the first line of the listing.
func parseListingRoot(lines []string) (*model.Node, error) {
	for i, line := range lines {
		if strings.TrimSpace(strings.TrimRight(line, "\r")) != "tree:" {
			continue
		}
		for _, l := range lines[i+1:] {
			name := strings.TrimSpace(strings.TrimRight(l, "\r"))
			if name == "" || name == separator {
				break
			}
			return model.NewFolder(strings.TrimSuffix(name, "/")), nil
		}
		break
	}
	return nil, &model.FormatError{Reason: "v2 artifact has no file blocks and no tree listing"}
}
