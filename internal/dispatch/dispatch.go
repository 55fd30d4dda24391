// Package dispatch decides which strategy handles arbitrary pasted or
// loaded text (a full structure artifact, a single unified diff, or a list
// of block commands) and drives the codec and patch engine accordingly.
package dispatch

import (
	"github.com/vovaauer/f2t2f/internal/codec"
	"github.com/vovaauer/f2t2f/internal/model"
	"github.com/vovaauer/f2t2f/internal/patch"
)

// Apply executes exactly one strategy for the input, in fixed priority
// order, stopping at the first that accepts it. A strategy that accepts the
// input but fails to apply is fatal; later strategies are not consulted.
// An input that is one markdown code fence is unwrapped once before any
// strategy sees it.
func Apply(text, dest string) error {
	text = StripFence(text)

	// Full structure artifact.
	if root, err := codec.Deserialize(text); err == nil {
		return patch.Apply(dest, model.FullStructure{Root: root})
	}

	// The whole input as one unified diff. Block start markers disqualify
	// the input here: a diff carried inside a `>>> diff:` block belongs to
	// the block strategy below.
	if !hasBlockMarkers(text) {
		if _, err := patch.ParseUnified(text); err == nil {
			return patch.Apply(dest, model.UnifiedDiff{DiffText: text})
		}
	}

	// Block commands.
	blocks, err := scanBlocks(text)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return &model.FormatError{
			Reason: "unrecognized input: not a structure artifact, a unified diff, or a block command list",
		}
	}
	return runBlocks(blocks, dest)
}
