package model

import "fmt"

// FormatError reports an artifact or diff that could not be parsed: invalid
// syntax, a wrong or missing marker, or a missing required field.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "format error: " + e.Reason
}

// NotFoundError reports a file or path that an operation requires but that
// does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "file not found: " + e.Path
}

// OutOfRangeError reports a line range outside the bounds of the target file.
// No write happens when this is returned.
type OutOfRangeError struct {
	Path      string
	StartLine int
	EndLine   int
	LineCount int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("line range %d-%d out of bounds for %s (file has %d lines)",
		e.StartLine, e.EndLine, e.Path, e.LineCount)
}

// ApplyConflictError reports a unified-diff hunk whose recorded content does
// not match the file on disk. Strip is the number of leading path segments
// that were removed from the diff's recorded path before applying.
type ApplyConflictError struct {
	Path   string
	Strip  int
	Hunk   int
	Reason string
}

func (e *ApplyConflictError) Error() string {
	return fmt.Sprintf("cannot apply hunk %d to %s (strip count %d): %s",
		e.Hunk, e.Path, e.Strip, e.Reason)
}
