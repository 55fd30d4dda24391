// Package cli defines the f2t2f command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovaauer/f2t2f/f2t2f"
	"github.com/vovaauer/f2t2f/internal/config"
	"github.com/vovaauer/f2t2f/internal/source"
	"github.com/vovaauer/f2t2f/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:           "f2t2f",
	Short:         "A tool to convert folder structures to text and back.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var outputFormat string

var copyCmd = &cobra.Command{
	Use:   "copy <folder>",
	Short: "Serialize a folder structure to the clipboard.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]
		ui.Info("Reading structure from '%s'...", filepath.Base(folder))

		artifact, err := f2t2f.New().Capture(folder, outputFormat)
		if err != nil {
			return err
		}
		if err := source.SetClipboard(artifact); err != nil {
			return err
		}
		ui.Success("Successfully copied structure of '%s' to clipboard in %s format.",
			filepath.Base(folder), strings.ToUpper(outputFormat))
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <folder> <output-file>",
	Short: "Save a folder structure to a text file.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, output := args[0], args[1]
		ui.Info("Reading structure from '%s'...", filepath.Base(folder))

		artifact, err := f2t2f.New().Capture(folder, outputFormat)
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, []byte(artifact), 0644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		ui.Success("Successfully saved structure to '%s' in %s format.",
			output, strings.ToUpper(outputFormat))
		return nil
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste [destination]",
	Short: "Create or patch a folder structure from the clipboard (or piped stdin).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := "."
		if len(args) == 1 {
			dest = args[0]
		}

		text, err := source.New().GetContent()
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("input is empty or does not contain text")
		}

		if err := f2t2f.New().Restore(text, dest); err != nil {
			return err
		}
		ui.Success("Folder structure created successfully.")
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <input-file> [destination]",
	Short: "Create or patch a folder structure from a text file.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		dest := "."
		if len(args) == 2 {
			dest = args[1]
		}

		data, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("read %s: %w", input, err)
		}
		if len(data) == 0 {
			return fmt.Errorf("input file '%s' is empty", input)
		}

		ui.Info("Reading structure from '%s'...", filepath.Base(input))
		if err := f2t2f.New().Restore(string(data), dest); err != nil {
			return err
		}
		ui.Success("Folder structure created successfully.")
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <artifact-file> <folder>",
	Short: "Show unified diffs between a saved artifact and a folder on disk.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		report, err := f2t2f.New().Diff(string(data), args[1])
		if err != nil {
			return err
		}
		if report == "" {
			ui.Info("No differences.")
			return nil
		}
		fmt.Print(report)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the f2t2f configuration.",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path to the configuration file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		ui.Info("Your configuration file is located at:")
		fmt.Println(path)
		return nil
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file for you to edit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(path); statErr == nil && !configInitForce {
			ui.Warning("Configuration file already exists.")
			ui.Info("To overwrite it, run: f2t2f config init --force")
			ui.Info("To see its location, run: f2t2f config path")
			return nil
		}

		path, err = config.SaveDefault()
		if err != nil {
			return err
		}
		ui.Success("Default configuration file created at:")
		fmt.Println(path)
		ui.Info("You can now edit this file to customize the ignored folders and files.")
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{copyCmd, saveCmd} {
		cmd.Flags().StringVar(&outputFormat, "format", f2t2f.FormatV2,
			"The output format ('v2' or 'json'). V2 is more readable and efficient.")
	}
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"Overwrite an existing configuration file.")

	configCmd.AddCommand(configPathCmd, configInitCmd)
	rootCmd.AddCommand(copyCmd, saveCmd, pasteCmd, loadCmd, diffCmd, configCmd)
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
