package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vovaauer/f2t2f/internal/model"
)

// MarkerV1 tags the JSON envelope of the structured format.
const MarkerV1 = "f2t2f-v1"

type v1Envelope struct {
	Type string  `json:"type"`
	Data *v1Node `json:"data"`
}

type v1Node struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Content  *string   `json:"content,omitempty"`
	Children []*v1Node `json:"children,omitempty"`
}

// SerializeV1 encodes the tree as the v1 JSON envelope.
func SerializeV1(root *model.Node) (string, error) {
	data, err := json.MarshalIndent(v1Envelope{Type: MarkerV1, Data: encodeV1(root)}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func encodeV1(n *model.Node) *v1Node {
	out := &v1Node{Name: n.Name}
	if n.IsFolder() {
		out.Type = "folder"
		for _, c := range n.Children {
			out.Children = append(out.Children, encodeV1(c))
		}
		return out
	}
	out.Type = "file"
	content := n.Content
	out.Content = &content
	return out
}

// ParseV1 decodes a v1 artifact. Any structural defect is a FormatError:
// invalid JSON, a top-level value that is not an object, a marker mismatch,
// or a missing data field.
func ParseV1(text string) (*model.Node, error) {
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return nil, &model.FormatError{Reason: "not a v1 artifact: top-level value is not an object"}
	}
	var env v1Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, &model.FormatError{Reason: "invalid v1 JSON: " + err.Error()}
	}
	if env.Type != MarkerV1 {
		return nil, &model.FormatError{Reason: fmt.Sprintf("wrong v1 marker %q", env.Type)}
	}
	if env.Data == nil {
		return nil, &model.FormatError{Reason: "v1 artifact is missing the data field"}
	}
	return decodeV1(env.Data)
}

func decodeV1(v *v1Node) (*model.Node, error) {
	if v == nil {
		return nil, &model.FormatError{Reason: "null node in v1 data"}
	}
	if v.Name == "" || strings.ContainsAny(v.Name, "/\\") {
		return nil, &model.FormatError{Reason: fmt.Sprintf("invalid node name %q", v.Name)}
	}
	switch v.Type {
	case "file":
		content := ""
		if v.Content != nil {
			content = *v.Content
		}
		return model.NewFile(v.Name, content), nil
	case "folder":
		node := model.NewFolder(v.Name)
		for _, c := range v.Children {
			child, err := decodeV1(c)
			if err != nil {
				return nil, err
			}
			if node.Child(child.Name) != nil {
				return nil, &model.FormatError{
					Reason: fmt.Sprintf("duplicate name %q in folder %q", child.Name, v.Name),
				}
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	default:
		return nil, &model.FormatError{Reason: fmt.Sprintf("unknown node type %q", v.Type)}
	}
}
