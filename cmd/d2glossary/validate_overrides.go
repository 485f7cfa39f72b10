package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/d2glossary/internal/glossary"
)

func newValidateOverridesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-overrides [file]",
		Short: "Check the override file and report entries that would be ignored",
		Long: `Check the override file and report entries that would be ignored.
Without an argument the file configured by overrides.file is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Overrides.File
			}
			if path == "" {
				return fmt.Errorf("no override file is configured")
			}

			result, err := glossary.ReadOverrides(path)
			if err != nil {
				return fmt.Errorf("glossary.ReadOverrides > %w", err)
			}

			displayOverrideResult(cmd.OutOrStdout(), path, result)
			if len(result.Rejected) > 0 {
				return fmt.Errorf("validation failed with %d blank override entry(s)", len(result.Rejected))
			}
			return nil
		},
	}
}

func displayOverrideResult(w io.Writer, path string, result *glossary.OverrideFile) {
	if len(result.Rejected) > 0 {
		red := color.New(color.FgRed)
		_, _ = red.Fprintf(w, "Entries with a blank term (%d):\n", len(result.Rejected))
		for _, source := range result.Rejected {
			_, _ = fmt.Fprintf(w, "  %q\n", source)
		}
		_, _ = fmt.Fprintln(w)
	}
	_, _ = color.New(color.FgGreen).Fprintf(w, "%s usable entries in %s\n",
		humanize.Comma(int64(len(result.Entries))), path)
}
