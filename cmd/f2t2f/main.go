package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/vovaauer/f2t2f/cli"
	"github.com/vovaauer/f2t2f/f2t2f"
	"github.com/vovaauer/f2t2f/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.Error("Error: %v", err)
		var detailed *f2t2f.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "%s\n", detailed.Stack)
		}
		os.Exit(1)
	}
}
