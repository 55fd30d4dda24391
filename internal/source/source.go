// Package source retrieves the raw input text for paste operations.
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/vovaauer/f2t2f/internal/ui"
)

// Provider determines and retrieves the source content.
type Provider struct{}

// New creates a new Provider.
func New() *Provider {
	return &Provider{}
}

// GetContent retrieves content from stdin (if piped) or the clipboard.
func (p *Provider) GetContent() (string, error) {
	stat, _ := os.Stdin.Stat()
	isPiped := (stat.Mode() & os.ModeCharDevice) == 0

	if isPiped {
		ui.Info("Reading structure from stdin...")
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	ui.Info("Reading structure from clipboard...")
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return content, nil
}

// SetClipboard places text on the system clipboard.
func SetClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
