// Package codec serializes a tree model to the two artifact formats and
// parses either format back, with auto-detection on input.
package codec

import "github.com/vovaauer/f2t2f/internal/model"

// Format names an artifact format.
type Format string

const (
	FormatV1 Format = "json"
	FormatV2 Format = "v2"
)

// Serialize encodes the tree in the requested format.
func Serialize(root *model.Node, format Format) (string, error) {
	switch format {
	case FormatV1:
		return SerializeV1(root)
	case FormatV2:
		return SerializeV2(root), nil
	default:
		return "", &model.FormatError{Reason: "unknown output format " + string(format)}
	}
}

// Deserialize parses an artifact of either format. V1 is attempted first:
// its validation is strict and cheap and cannot false-positive on v2 input.
// When both parsers reject the input, the result is a single generic error
// rather than either parser's internal one.
func Deserialize(text string) (*model.Node, error) {
	if root, err := ParseV1(text); err == nil {
		return root, nil
	}
	if root, err := ParseV2(text); err == nil {
		return root, nil
	}
	return nil, &model.FormatError{
		Reason: "unrecognized artifact: input matches neither the v1 JSON format nor the v2 hybrid format",
	}
}
