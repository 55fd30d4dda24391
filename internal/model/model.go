// Package model holds the value types shared across the codec, filter and
// patch engines: the in-memory tree of a captured folder and the patch
// descriptors that mutate an existing tree on disk.
package model

// Kind discriminates the two node variants.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// Node is one entry of the tree model. Name is a single path segment.
// Content is meaningful only for files, Children only for folders;
// Children keeps construction order.
type Node struct {
	Name     string
	Kind     Kind
	Content  string
	Children []*Node
}

// NewFile returns a file node.
func NewFile(name, content string) *Node {
	return &Node{Name: name, Kind: KindFile, Content: content}
}

// NewFolder returns a folder node with the given children.
func NewFolder(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: KindFolder, Children: children}
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Patch is the closed set of mutations the patch engine applies against a
// base directory. Exactly ReplaceLines, UnifiedDiff and FullStructure
// implement it.
type Patch interface {
	isPatch()
}

// ReplaceLines replaces the inclusive 1-based line range [StartLine, EndLine]
// of the file at Path with the lines of NewContent.
type ReplaceLines struct {
	Path       string
	StartLine  int
	EndLine    int
	NewContent string
}

// UnifiedDiff applies a unified-diff patch set. PathHint carries the path
// named by the originating input block, if any; the diff text itself remains
// the authority on target paths.
type UnifiedDiff struct {
	PathHint string
	DiffText string
}

// FullStructure materializes a whole parsed tree.
type FullStructure struct {
	Root *Node
}

func (ReplaceLines) isPatch()  {}
func (UnifiedDiff) isPatch()   {}
func (FullStructure) isPatch() {}
