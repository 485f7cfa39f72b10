package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/d2glossary/internal/bungie"
	"github.com/at-ishikawa/d2glossary/internal/config"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func newBungieClient(cfg *config.Config) (*bungie.Client, error) {
	client, err := bungie.NewClient(cfg.Bungie.BaseURL, cfg.Bungie.ManifestPath, cfg.Bungie.APIKey)
	if err != nil {
		return nil, fmt.Errorf("bungie.NewClient > %w", err)
	}
	return client, nil
}

// DefinitionTypesFlag collects --type values. Each value may also be a
// comma separated list.
type DefinitionTypesFlag []string

// Set implements pflag.Value.
func (f *DefinitionTypesFlag) Set(v string) error {
	for _, name := range strings.Split(v, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("invalid value %q, a definition type name is required", v)
		}
		if !slices.Contains(*f, name) {
			*f = append(*f, name)
		}
	}
	return nil
}

// String implements pflag.Value.
func (f *DefinitionTypesFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

// Type implements pflag.Value.
func (f *DefinitionTypesFlag) Type() string {
	return "DefinitionType"
}

var (
	_ pflag.Value = (*DefinitionTypesFlag)(nil)
)
