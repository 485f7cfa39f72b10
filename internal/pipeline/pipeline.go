// Package pipeline runs the fetch, filter, merge and persist steps once per invocation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/at-ishikawa/d2glossary/internal/bungie"
	"github.com/at-ishikawa/d2glossary/internal/config"
	"github.com/at-ishikawa/d2glossary/internal/glossary"
	"github.com/at-ishikawa/d2glossary/internal/output"
)

var ErrUnknownDefinitionType = errors.New("definition type is not configured")

// Runner holds everything one run needs. It has no state between runs.
type Runner struct {
	cfg    *config.Config
	client bungie.ManifestClient
	sinks  []output.Sink

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(cfg *config.Config, client bungie.ManifestClient, sinks ...output.Sink) *Runner {
	return &Runner{
		cfg:    cfg,
		client: client,
		sinks:  sinks,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// BuildOptions adjusts a single build without touching the configuration.
type BuildOptions struct {
	// DefinitionTypes restricts the run to a subset of the configured types.
	DefinitionTypes []string
	// OutputFile replaces output.file when set.
	OutputFile    string
	SkipUnchanged bool
}

type BuildResult struct {
	Document   output.GlossaryDocument
	OutputFile string
	Size       int
	// Skipped is true when the content hash matched the existing output file.
	Skipped bool
	Elapsed time.Duration
}

// Build fetches every configured definition type and writes the glossary.
// Nothing is written unless every download succeeds.
func (r *Runner) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	startedAt := r.now()
	logger := slog.Default()

	definitions, err := r.definitions(opts.DefinitionTypes)
	if err != nil {
		return nil, err
	}
	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = r.cfg.Output.File
	}

	manifest, err := r.client.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.Manifest > %w", err)
	}
	logger.Info("fetched manifest", "version", manifest.Version)

	glossaries := make([]glossary.Glossary, 0, len(definitions)+1)
	for _, definition := range definitions {
		tables, err := r.fetchTables(ctx, manifest, definition.Name)
		if err != nil {
			return nil, err
		}

		records := glossary.Select(tables, r.cfg.Languages, ruleOf(definition))
		extracted := glossary.FromRecords(records, r.cfg.Languages)
		logger.Info("extracted glossary",
			"definition_type", definition.Name,
			"entries", humanize.Comma(int64(len(extracted))))
		logger.Debug("filtered out records",
			"definition_type", definition.Name,
			"count", len(tables[r.cfg.Languages[0]])-len(records))

		glossaries = append(glossaries, extracted)
	}

	overrides := glossary.LoadOverrides(r.cfg.Overrides.File)
	logger.Info("loaded overrides", "entries", humanize.Comma(int64(len(overrides))))
	merged := glossary.Merge(append(glossaries, overrides)...)
	entries := glossary.Sort(glossary.Augment(merged, overrides))

	document, err := output.NewGlossaryDocument(manifest.Version, startedAt, r.cfg.Output.Source, definitions.Names(), entries)
	if err != nil {
		return nil, fmt.Errorf("output.NewGlossaryDocument > %w", err)
	}
	result := &BuildResult{
		Document:   document,
		OutputFile: outputFile,
	}

	if opts.SkipUnchanged && r.unchanged(outputFile, document.Metadata.DataHash) {
		result.Skipped = true
		result.Elapsed = r.now().Sub(startedAt)
		logger.Info("glossary unchanged, skipped writing",
			"path", outputFile,
			"data_hash", document.Metadata.DataHash,
			"elapsed", result.Elapsed)
		return result, nil
	}

	encoded, err := output.Encode(document)
	if err != nil {
		return nil, fmt.Errorf("output.Encode > %w", err)
	}
	if err := output.WriteFile(outputFile, encoded); err != nil {
		return nil, fmt.Errorf("output.WriteFile > %w", err)
	}
	result.Size = len(encoded)
	logger.Info("wrote glossary",
		"path", outputFile,
		"entries", humanize.Comma(int64(len(entries))),
		"size", humanize.Bytes(uint64(len(encoded))))

	artifact := output.Artifact{Document: document, JSON: encoded}
	for _, sink := range r.sinks {
		if err := sink.Write(ctx, artifact); err != nil {
			return nil, fmt.Errorf("sink.Write(%s) > %w", sink.Name(), err)
		}
		logger.Info("published glossary", "sink", sink.Name())
	}

	result.Elapsed = r.now().Sub(startedAt)
	logger.Info("build finished",
		"started_at", startedAt.Format(time.RFC3339),
		"elapsed", result.Elapsed)
	return result, nil
}

// CatalogOptions adjusts a single catalog run.
type CatalogOptions struct {
	DefinitionTypes []string
	OutputFile      string
}

type CatalogResult struct {
	Document   output.CatalogDocument
	OutputFile string
	Size       int
	Elapsed    time.Duration
}

// Catalog writes every retained record with its name in each configured
// language, keyed by record hash.
func (r *Runner) Catalog(ctx context.Context, opts CatalogOptions) (*CatalogResult, error) {
	startedAt := r.now()
	logger := slog.Default()

	definitions, err := r.definitions(opts.DefinitionTypes)
	if err != nil {
		return nil, err
	}
	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = r.cfg.Output.CatalogFile
	}

	manifest, err := r.client.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.Manifest > %w", err)
	}
	logger.Info("fetched manifest", "version", manifest.Version)

	catalog := make(map[string]map[string]string)
	for _, definition := range definitions {
		tables, err := r.fetchTables(ctx, manifest, definition.Name)
		if err != nil {
			return nil, err
		}

		var count int
		for _, record := range glossary.Select(tables, r.cfg.Languages, ruleOf(definition)) {
			if !hasEveryName(record, r.cfg.Languages) {
				continue
			}
			catalog[record.Key] = record.Names
			count++
		}
		logger.Info("selected records",
			"definition_type", definition.Name,
			"records", humanize.Comma(int64(count)))
	}

	document, err := output.NewCatalogDocument(manifest.Version, startedAt, r.cfg.Output.Source, definitions.Names(), catalog)
	if err != nil {
		return nil, fmt.Errorf("output.NewCatalogDocument > %w", err)
	}
	encoded, err := output.Encode(document)
	if err != nil {
		return nil, fmt.Errorf("output.Encode > %w", err)
	}
	if err := output.WriteFile(outputFile, encoded); err != nil {
		return nil, fmt.Errorf("output.WriteFile > %w", err)
	}

	result := &CatalogResult{
		Document:   document,
		OutputFile: outputFile,
		Size:       len(encoded),
		Elapsed:    r.now().Sub(startedAt),
	}
	logger.Info("wrote catalog",
		"path", outputFile,
		"records", humanize.Comma(int64(len(catalog))),
		"size", humanize.Bytes(uint64(len(encoded))),
		"elapsed", result.Elapsed)
	return result, nil
}

// definitions returns the configured definition types, restricted to names
// when it is not empty. Configuration order is kept either way.
func (r *Runner) definitions(names []string) (config.Definitions, error) {
	if len(names) == 0 {
		return r.cfg.Definitions, nil
	}
	for _, name := range names {
		if _, ok := r.cfg.Definition(name); !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrUnknownDefinitionType)
		}
	}

	selected := make(config.Definitions, 0, len(names))
	for _, definition := range r.cfg.Definitions {
		for _, name := range names {
			if definition.Name == name {
				selected = append(selected, definition)
				break
			}
		}
	}
	return selected, nil
}

// fetchTables downloads one table of definitionType per configured language.
func (r *Runner) fetchTables(ctx context.Context, manifest *bungie.Manifest, definitionType string) (map[string]bungie.DefinitionTable, error) {
	tables := make(map[string]bungie.DefinitionTable, len(r.cfg.Languages))
	for _, language := range r.cfg.Languages {
		path, err := manifest.ContentPath(language, definitionType)
		if err != nil {
			return nil, fmt.Errorf("manifest.ContentPath > %w", err)
		}

		table, err := r.client.Definitions(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("client.Definitions(%s, %s) > %w", definitionType, language, err)
		}
		slog.Default().Info("fetched definitions",
			"definition_type", definitionType,
			"language", language,
			"records", humanize.Comma(int64(len(table))))
		tables[language] = table

		if err := r.sleep(ctx, r.cfg.Bungie.RequestInterval); err != nil {
			return nil, fmt.Errorf("sleep > %w", err)
		}
	}
	return tables, nil
}

func (r *Runner) unchanged(path, hash string) bool {
	previous, err := output.ReadMetadata(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Default().Debug("no previous output", "path", path)
		} else {
			slog.Default().Warn("previous output could not be read", "path", path, "error", err)
		}
		return false
	}
	return previous.DataHash == hash
}

func ruleOf(definition config.DefinitionConfig) glossary.Rule {
	return glossary.Rule{
		IncludeCategories: definition.IncludeCategories,
		ExcludeCategories: definition.ExcludeCategories,
	}
}

func hasEveryName(record glossary.Record, languages []string) bool {
	for _, language := range languages {
		if record.Names[language] == "" {
			return false
		}
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
