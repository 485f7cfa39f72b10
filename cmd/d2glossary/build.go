package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/d2glossary/internal/config"
	"github.com/at-ishikawa/d2glossary/internal/database"
	"github.com/at-ishikawa/d2glossary/internal/glossary"
	"github.com/at-ishikawa/d2glossary/internal/output"
	"github.com/at-ishikawa/d2glossary/internal/pipeline"
	"github.com/at-ishikawa/d2glossary/schemas"
)

func newBuildCommand() *cobra.Command {
	var definitionTypes DefinitionTypesFlag
	var outputFile string
	var skipUnchanged bool

	command := &cobra.Command{
		Use:   "build",
		Short: "Fetch the manifest and write the glossary with its metadata",
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

			sinks, closeSinks, err := newSinks(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSinks()

			result, err := pipeline.NewRunner(cfg, client, sinks...).Build(ctx, pipeline.BuildOptions{
				DefinitionTypes: definitionTypes,
				OutputFile:      outputFile,
				SkipUnchanged:   skipUnchanged,
			})
			if err != nil {
				return fmt.Errorf("runner.Build > %w", err)
			}

			printBuildSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := command.Flags()
	flags.Var(&definitionTypes, "type", "Definition type to include; repeatable. Defaults to every configured type")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file path. Overrides output.file")
	flags.BoolVar(&skipUnchanged, "skip-unchanged", false, "Do not write or publish when the glossary hash equals the existing output file")

	return command
}

// newSinks returns the sinks enabled by cfg in publishing order. The returned
// function releases their resources.
func newSinks(ctx context.Context, cfg *config.Config) ([]output.Sink, func(), error) {
	var sinks []output.Sink
	var closers []func()
	closeAll := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}

	if cfg.Output.MetadataFile != "" {
		sinks = append(sinks, output.NewMetadataFileSink(cfg.Output.MetadataFile))
	}
	if cfg.Output.YAMLFile != "" {
		sinks = append(sinks, output.NewYAMLFileSink(cfg.Output.YAMLFile))
	}
	if cfg.Database.Enabled {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := database.ApplySchema(ctx, db, schemas.Migrations); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
		sinks = append(sinks, output.NewRepositorySink(glossary.NewDBRepository(db)))
	}
	if cfg.Publish.S3.Enabled() {
		s3Sink, err := output.NewS3Sink(cfg.Publish.S3)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("output.NewS3Sink > %w", err)
		}
		sinks = append(sinks, s3Sink)
	}
	return sinks, closeAll, nil
}

func printBuildSummary(w io.Writer, result *pipeline.BuildResult) {
	metadata := result.Document.Metadata
	if result.Skipped {
		_, _ = color.New(color.FgYellow).Fprintf(w, "Glossary unchanged, %s was not rewritten\n", result.OutputFile)
		_, _ = fmt.Fprintf(w, "  Version:   %s\n", metadata.Version)
		_, _ = fmt.Fprintf(w, "  Data hash: %s\n", metadata.DataHash)
		return
	}

	_, _ = color.New(color.FgGreen, color.Bold).Fprintf(w, "Wrote %s entries to %s\n",
		humanize.Comma(int64(metadata.ItemCount)), result.OutputFile)
	_, _ = fmt.Fprintf(w, "  Version:   %s\n", metadata.Version)
	_, _ = fmt.Fprintf(w, "  Data hash: %s\n", metadata.DataHash)
	_, _ = fmt.Fprintf(w, "  Size:      %s\n", humanize.Bytes(uint64(result.Size)))
	_, _ = fmt.Fprintf(w, "  Elapsed:   %s\n", result.Elapsed.Round(time.Millisecond))
}
