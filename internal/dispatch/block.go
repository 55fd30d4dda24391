package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vovaauer/f2t2f/internal/model"
	"github.com/vovaauer/f2t2f/internal/patch"
)

var (
	blockStartRe = regexp.MustCompile(`^>>> (file|patch|diff): (.+)$`)
	linesMetaRe  = regexp.MustCompile(`(?m)^lines:\s*(\d+)\s*-\s*(\d+)\s*$`)
)

const blockEnd = "<<<"

type block struct {
	kind string
	path string
	body string
}

// hasBlockMarkers reports whether any line opens a command block.
func hasBlockMarkers(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if blockStartRe.MatchString(strings.TrimRight(line, "\r")) {
			return true
		}
	}
	return false
}

// scanBlocks collects `>>> kind: path` ... `<<<` blocks in input order. An
// unterminated block after valid ones is a FormatError rather than a silent
// drop; an input with nothing but unterminated blocks yields zero blocks and
// is rejected by the caller.
func scanBlocks(text string) ([]block, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var blocks []block
	for i := 0; i < len(lines); i++ {
		m := blockStartRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		var body []string
		closed := false
		j := i + 1
		for ; j < len(lines); j++ {
			if lines[j] == blockEnd {
				closed = true
				break
			}
			body = append(body, lines[j])
		}
		if !closed {
			if len(blocks) > 0 {
				return nil, &model.FormatError{
					Reason: fmt.Sprintf("unterminated %s block for %q", m[1], strings.TrimSpace(m[2])),
				}
			}
			break
		}
		blocks = append(blocks, block{
			kind: m[1],
			path: strings.TrimSpace(m[2]),
			body: strings.Join(body, "\n"),
		})
		i = j
	}
	return blocks, nil
}

// runBlocks executes blocks in order. The first failing block aborts the
// rest; blocks already applied stay applied.
func runBlocks(blocks []block, dest string) error {
	for _, b := range blocks {
		if err := runBlock(b, dest); err != nil {
			return fmt.Errorf("block %s %s: %w", b.kind, b.path, err)
		}
	}
	return nil
}

func runBlock(b block, dest string) error {
	switch b.kind {
	case "file":
		target := filepath.Join(dest, filepath.FromSlash(b.path))
		if dir := filepath.Dir(target); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create folder %s: %w", dir, err)
			}
		}
		return os.WriteFile(target, []byte(StripFence(b.body)), 0644)
	case "patch":
		desc, err := parsePatchBlock(b)
		if err != nil {
			return err
		}
		return patch.Apply(dest, desc)
	case "diff":
		return patch.Apply(dest, model.UnifiedDiff{
			PathHint: b.path,
			DiffText: StripFence(b.body),
		})
	default:
		return &model.FormatError{Reason: "unknown block kind " + b.kind}
	}
}

// parsePatchBlock splits a patch block body into its metadata section and
// the ----delimited replacement content, building a ReplaceLines descriptor.
func parsePatchBlock(b block) (model.ReplaceLines, error) {
	var zero model.ReplaceLines
	lines := strings.Split(b.body, "\n")

	sep := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			sep = i
			break
		}
	}
	if sep == -1 {
		return zero, &model.FormatError{Reason: "patch block is missing the --- content separator"}
	}

	meta := strings.Join(lines[:sep], "\n")
	m := linesMetaRe.FindStringSubmatch(meta)
	if m == nil {
		return zero, &model.FormatError{Reason: "patch block metadata has no lines: <start>-<end> token"}
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])

	return model.ReplaceLines{
		Path:       b.path,
		StartLine:  start,
		EndLine:    end,
		NewContent: strings.Join(lines[sep+1:], "\n"),
	}, nil
}
