package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vovaauer/f2t2f/internal/model"
)

// Hunk is one change region of a unified diff. Lines keep their leading
// ' ', '-' or '+' markers. The NoNewline flags record which side a
// "\ No newline at end of file" marker annotated: a marker after a '-'
// line describes the old file, after a '+' line the new file, and after a
// context line both.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []string
	NoNewlineOld       bool
	NoNewlineNew       bool
}

// FilePatch is all hunks recorded against one target path.
type FilePatch struct {
	Path  string
	Hunks []Hunk
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseUnified parses a unified-diff patch set. A text that yields no file
// with at least one hunk is a FormatError, never a silent no-op.
func ParseUnified(text string) ([]FilePatch, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var patches []FilePatch
	var current *FilePatch
	var oldPath string

	flush := func() {
		if current != nil && len(current.Hunks) > 0 {
			patches = append(patches, *current)
		}
		current = nil
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "--- "):
			oldPath = headerPath(line[4:], "a/")
			i++
		case strings.HasPrefix(line, "+++ "):
			flush()
			target := headerPath(line[4:], "b/")
			if target == "/dev/null" || target == "" {
				target = oldPath
			}
			current = &FilePatch{Path: target}
			i++
		case strings.HasPrefix(line, "@@ "):
			if current == nil {
				return nil, &model.FormatError{Reason: "hunk header before any file header in diff"}
			}
			hunk, next, err := parseHunk(lines, i)
			if err != nil {
				return nil, err
			}
			current.Hunks = append(current.Hunks, hunk)
			i = next
		default:
			i++
		}
	}
	flush()

	if len(patches) == 0 {
		return nil, &model.FormatError{Reason: "diff contains no applicable change items"}
	}
	return patches, nil
}

// headerPath extracts the path from a ---/+++ header value, dropping a
// trailing timestamp and the conventional a// b/ prefix.
func headerPath(v, prefix string) string {
	if tab := strings.IndexByte(v, '\t'); tab != -1 {
		v = v[:tab]
	}
	v = strings.TrimSpace(v)
	if v == "/dev/null" {
		return v
	}
	return strings.TrimPrefix(v, prefix)
}

func parseHunk(lines []string, i int) (Hunk, int, error) {
	m := hunkHeaderRe.FindStringSubmatch(lines[i])
	if m == nil {
		return Hunk{}, 0, &model.FormatError{Reason: "malformed hunk header: " + lines[i]}
	}
	h := Hunk{
		OldStart: atoiDefault(m[1], 0),
		OldCount: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 0),
		NewCount: atoiDefault(m[4], 1),
	}
	i++

	lastMarker := byte(0)
	markNoNewline := func() {
		switch lastMarker {
		case '-':
			h.NoNewlineOld = true
		case '+':
			h.NoNewlineNew = true
		default:
			h.NoNewlineOld = true
			h.NoNewlineNew = true
		}
	}

	oldLeft, newLeft := h.OldCount, h.NewCount
	for i < len(lines) && (oldLeft > 0 || newLeft > 0) {
		line := lines[i]
		marker := byte(' ')
		if line != "" {
			marker = line[0]
		}
		switch marker {
		case ' ':
			oldLeft--
			newLeft--
		case '-':
			oldLeft--
		case '+':
			newLeft--
		case '\\':
			// "\ No newline at end of file"
			markNoNewline()
			i++
			continue
		default:
			return Hunk{}, 0, &model.FormatError{Reason: "unexpected line inside hunk: " + line}
		}
		if oldLeft < 0 || newLeft < 0 {
			return Hunk{}, 0, &model.FormatError{Reason: "hunk body does not match its header counts"}
		}
		lastMarker = marker
		h.Lines = append(h.Lines, line)
		i++
	}
	if oldLeft > 0 || newLeft > 0 {
		return Hunk{}, 0, &model.FormatError{Reason: "truncated hunk body"}
	}
	if i < len(lines) && strings.HasPrefix(lines[i], `\`) {
		markNoNewline()
		i++
	}
	return h, i, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// InferStrip decides how many leading segments of the diff's recorded path
// to drop before resolving it under baseDir: the first strip count, probing
// from zero upward, whose remainder exists on disk wins. When nothing
// resolves the diff is creating a new file: strip one segment if baseDir's
// own name equals the first path segment, else strip nothing.
func InferStrip(baseDir, target string) (int, string) {
	segs := strings.Split(target, "/")
	for s := 0; s < len(segs); s++ {
		candidate := filepath.Join(baseDir, filepath.FromSlash(strings.Join(segs[s:], "/")))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return s, candidate
		}
	}
	abs, err := filepath.Abs(baseDir)
	if err == nil && len(segs) > 1 && filepath.Base(abs) == segs[0] {
		return 1, filepath.Join(baseDir, filepath.FromSlash(strings.Join(segs[1:], "/")))
	}
	return 0, filepath.Join(baseDir, filepath.FromSlash(target))
}

func applyUnified(baseDir string, p model.UnifiedDiff) error {
	patches, err := ParseUnified(p.DiffText)
	if err != nil {
		return err
	}
	for _, fp := range patches {
		strip, target := InferStrip(baseDir, fp.Path)
		if err := applyFilePatch(target, fp, strip); err != nil {
			return err
		}
	}
	return nil
}

// applyFilePatch validates every hunk against the current file content and
// writes the result in one shot; a mismatch in any hunk means no write at
// all for that file.
func applyFilePatch(target string, fp FilePatch, strip int) error {
	var oldLines []string
	hadNewline := true
	if data, err := os.ReadFile(target); err == nil {
		content := string(data)
		if content != "" {
			hadNewline = strings.HasSuffix(content, "\n")
			oldLines = strings.Split(strings.TrimSuffix(content, "\n"), "\n")
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", target, err)
	}

	newLines, atEOF, err := applyHunks(oldLines, fp, strip)
	if err != nil {
		return err
	}

	content := strings.Join(newLines, "\n")
	if len(newLines) > 0 {
		switch {
		case atEOF && fp.Hunks[len(fp.Hunks)-1].NoNewlineNew:
			// new side explicitly ends without a newline
		case atEOF:
			content += "\n"
		case hadNewline:
			content += "\n"
		}
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create folder %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// applyHunks replays the hunks over the old lines. atEOF reports whether
// the last hunk consumed the file through its final line.
func applyHunks(old []string, fp FilePatch, strip int) (out []string, atEOF bool, err error) {
	conflict := func(hunk int, reason string) error {
		return &model.ApplyConflictError{Path: fp.Path, Strip: strip, Hunk: hunk, Reason: reason}
	}

	cursor := 0
	for i, h := range fp.Hunks {
		pos := h.OldStart - 1
		if h.OldCount == 0 {
			// A zero-length old side anchors *after* the recorded line.
			pos = h.OldStart
		}
		if pos < cursor || pos > len(old) {
			return nil, false, conflict(i+1, fmt.Sprintf("hunk position %d outside remaining file", h.OldStart))
		}
		out = append(out, old[cursor:pos]...)
		cursor = pos

		for _, line := range h.Lines {
			marker, text := byte(' '), ""
			if line != "" {
				marker, text = line[0], line[1:]
			}
			switch marker {
			case ' ':
				if cursor >= len(old) || old[cursor] != text {
					return nil, false, conflict(i+1, contextMismatch(old, cursor, text))
				}
				out = append(out, text)
				cursor++
			case '-':
				if cursor >= len(old) || old[cursor] != text {
					return nil, false, conflict(i+1, contextMismatch(old, cursor, text))
				}
				cursor++
			case '+':
				out = append(out, text)
			}
		}
	}
	atEOF = cursor == len(old)
	out = append(out, old[cursor:]...)
	return out, atEOF, nil
}

func contextMismatch(old []string, cursor int, want string) string {
	if cursor >= len(old) {
		return fmt.Sprintf("expected line %q past end of file", want)
	}
	return fmt.Sprintf("expected line %q, file has %q at line %d", want, old[cursor], cursor+1)
}
