// Package f2t2f is the library facade: capture a folder structure into a
// portable text artifact, and restore or patch a folder from such text.
package f2t2f

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vovaauer/f2t2f/internal/codec"
	"github.com/vovaauer/f2t2f/internal/config"
	"github.com/vovaauer/f2t2f/internal/diffgen"
	"github.com/vovaauer/f2t2f/internal/dispatch"
	"github.com/vovaauer/f2t2f/internal/fsops"
)

// Output formats accepted by Capture.
const (
	FormatJSON = string(codec.FormatV1)
	FormatV2   = string(codec.FormatV2)
)

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

// App ties the capture and restore pipelines together. LoadPatterns supplies
// the active global ignore patterns; it defaults to the persisted user
// configuration and is injectable for testing.
type App struct {
	LoadPatterns func() []string
}

// New creates an App backed by the persisted configuration.
func New() *App {
	return &App{LoadPatterns: config.LoadIgnorePatterns}
}

// Capture reads the folder from disk, applying the active filter rules, and
// serializes it in the requested format.
func (a *App) Capture(folder, format string) (artifact string, err error) {
	defer recoverInto(&err)

	root, err := fsops.ReadTree(folder, a.LoadPatterns())
	if err != nil {
		return "", err
	}
	return codec.Serialize(root, codec.Format(format))
}

// Restore dispatches arbitrary pasted or loaded text into dest, creating
// dest if needed. The input is handled as a full structure artifact, a
// single unified diff, or a block command list, whichever accepts first.
func (a *App) Restore(text, dest string) (err error) {
	defer recoverInto(&err)

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("create destination %s: %w", dest, err)
	}
	return dispatch.Apply(text, dest)
}

// Diff loads an artifact, captures folder with the active filter rules, and
// renders unified diffs for every file that differs between the two.
func (a *App) Diff(artifact, folder string) (report string, err error) {
	defer recoverInto(&err)

	before, err := codec.Deserialize(artifact)
	if err != nil {
		return "", err
	}
	after, err := fsops.ReadTree(folder, a.LoadPatterns())
	if err != nil {
		return "", err
	}
	return diffgen.Compare(before, after)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = &DetailedError{
			Err:   fmt.Errorf("internal panic: %v", r),
			Stack: debug.Stack(),
		}
	}
}
