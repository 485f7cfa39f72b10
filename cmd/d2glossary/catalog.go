package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/d2glossary/internal/config"
	"github.com/at-ishikawa/d2glossary/internal/pipeline"
)

func newCatalogCommand() *cobra.Command {
	definitionTypes := DefinitionTypesFlag{}
	var outputFile string

	command := &cobra.Command{
		Use:   "catalog",
		Short: "Write every retained record with its name in each configured language",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newBungieClient(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			types := []string(definitionTypes)
			if len(types) == 0 {
				types = []string{config.DefinitionTypeInventoryItem}
			}
			result, err := pipeline.NewRunner(cfg, client).Catalog(ctx, pipeline.CatalogOptions{
				DefinitionTypes: types,
				OutputFile:      outputFile,
			})
			if err != nil {
				return fmt.Errorf("runner.Catalog > %w", err)
			}

			printCatalogSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := command.Flags()
	flags.Var(&definitionTypes, "type", fmt.Sprintf("Definition type to include; repeatable. Defaults to %s", config.DefinitionTypeInventoryItem))
	flags.StringVarP(&outputFile, "output", "o", "", "Output file path. Overrides output.catalog_file")

	return command
}

func printCatalogSummary(w io.Writer, result *pipeline.CatalogResult) {
	metadata := result.Document.Metadata
	_, _ = color.New(color.FgGreen, color.Bold).Fprintf(w, "Wrote %s records to %s\n",
		humanize.Comma(int64(metadata.ItemCount)), result.OutputFile)
	_, _ = fmt.Fprintf(w, "  Version:   %s\n", metadata.Version)
	_, _ = fmt.Fprintf(w, "  Data hash: %s\n", metadata.DataHash)
	_, _ = fmt.Fprintf(w, "  Size:      %s\n", humanize.Bytes(uint64(result.Size)))
}
