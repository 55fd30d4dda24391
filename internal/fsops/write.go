package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vovaauer/f2t2f/internal/model"
)

// Materialize writes the tree under destDir as real folders and files,
// creating folders and creating or overwriting files. Entries already on
// disk that the tree does not mention are left untouched; nothing is ever
// deleted.
func Materialize(root *model.Node, destDir string) error {
	type item struct {
		node   *model.Node
		parent string
	}

	stack := []item{{root, destDir}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		target := filepath.Join(it.parent, it.node.Name)
		if it.node.IsFolder() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create folder %s: %w", target, err)
			}
			// Reverse push keeps construction order on disk operations.
			for i := len(it.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{it.node.Children[i], target})
			}
			continue
		}
		if err := os.WriteFile(target, []byte(it.node.Content), 0644); err != nil {
			return fmt.Errorf("write file %s: %w", target, err)
		}
	}
	return nil
}
