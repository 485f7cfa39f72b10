package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/d2glossary/internal/config"
	"github.com/at-ishikawa/d2glossary/internal/output"
	"github.com/at-ishikawa/d2glossary/internal/pipeline"
	"github.com/at-ishikawa/d2glossary/internal/testutil"
)

type writtenGlossary struct {
	Metadata output.Metadata  `json:"metadata"`
	Data     map[string]string `json:"data"`
}

func setupBuildTest(t *testing.T) string {
	t.Helper()
	disableColor(t)

	tmpDir := t.TempDir()
	server := testutil.NewManifestServer(t, testutil.DefaultFixture())
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir, server.URL))
	t.Setenv("BUNGIE_API_KEY", testutil.TestAPIKey)
	testutil.WriteOverrides(t, tmpDir, map[string]string{"Vault of Glass": "玻璃宝库"})
	return tmpDir
}

func TestNewBuildCommand(t *testing.T) {
	cmd := newBuildCommand()

	assert.Equal(t, "build", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	typeFlag := cmd.Flags().Lookup("type")
	require.NotNil(t, typeFlag)
	assert.Equal(t, "DefinitionType", typeFlag.Value.Type())
	assert.Equal(t, "", typeFlag.DefValue)

	outputFlag := cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	skipFlag := cmd.Flags().Lookup("skip-unchanged")
	require.NotNil(t, skipFlag)
	assert.Equal(t, "false", skipFlag.DefValue)
}

func TestBuildCommand(t *testing.T) {
	tmpDir := setupBuildTest(t)
	outputFile := filepath.Join(tmpDir, "Destiny2_term.json")

	var stdout bytes.Buffer
	cmd := newBuildCommand()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	contents, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var got writtenGlossary
	require.NoError(t, json.Unmarshal(contents, &got))
	assert.Equal(t, map[string]string{
		"Rat King's Crew": "鼠王小队",
		"Rat King’s Crew": "鼠王小队",
		"Vault of Glass":  "玻璃宝库",
		"Ghost Shell":     "幽灵外壳",
		"The Whisper":     "低语",
		"Whisper":         "低语",
	}, got.Data)
	assert.Equal(t, "230101.1", got.Metadata.Version)
	assert.Equal(t, 6, got.Metadata.ItemCount)
	assert.Equal(t, "Bungie Destiny 2 Manifest", got.Metadata.Source)
	assert.Equal(t, []string{config.DefinitionTypeInventoryItem, config.DefinitionTypeActivity}, got.Metadata.DefinitionTypes)
	assert.WithinDuration(t, time.Now(), got.Metadata.Timestamp, time.Minute)
	assert.Len(t, got.Metadata.DataHash, 64)

	// longer terms come first in the file
	text := string(contents)
	assert.Less(t, strings.Index(text, `"Rat King's Crew"`), strings.Index(text, `"Ghost Shell"`))
	assert.Less(t, strings.Index(text, `"Ghost Shell"`), strings.Index(text, `"Whisper"`))

	assert.Contains(t, stdout.String(), "Wrote 6 entries to "+outputFile)
	assert.Contains(t, stdout.String(), got.Metadata.DataHash)
}

func TestBuildCommand_Options(t *testing.T) {
	tmpDir := setupBuildTest(t)
	outputFile := filepath.Join(tmpDir, "activities.json")
	args := []string{"--type", config.DefinitionTypeActivity, "-o", outputFile, "--skip-unchanged"}

	var first bytes.Buffer
	cmd := newBuildCommand()
	cmd.SetOut(&first)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, first.String(), "Wrote 3 entries to "+outputFile)
	assert.NoFileExists(t, filepath.Join(tmpDir, "Destiny2_term.json"))

	contents, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	var got writtenGlossary
	require.NoError(t, json.Unmarshal(contents, &got))
	assert.Equal(t, []string{config.DefinitionTypeActivity}, got.Metadata.DefinitionTypes)

	var second bytes.Buffer
	cmd = newBuildCommand()
	cmd.SetOut(&second)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, second.String(), "Glossary unchanged, "+outputFile+" was not rewritten")

	unchanged, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, contents, unchanged)
}

func TestBuildCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		args    []string
		wantErr string
		wantIs  error
	}{
		{
			name: "broken config",
			setup: func(t *testing.T) {
				setConfigFile(t, setupBrokenConfigFile(t))
			},
			wantErr: "could not be read",
		},
		{
			name: "missing api key",
			setup: func(t *testing.T) {
				setupBuildTest(t)
				t.Setenv("BUNGIE_API_KEY", "")
			},
			wantErr: "BUNGIE_API_KEY",
		},
		{
			name: "rejected api key",
			setup: func(t *testing.T) {
				setupBuildTest(t)
				t.Setenv("BUNGIE_API_KEY", "wrong-key")
			},
			wantErr: "response error 401",
		},
		{
			name: "unknown definition type",
			setup: func(t *testing.T) {
				setupBuildTest(t)
			},
			args:   []string{"--type", "DestinyRecordDefinition"},
			wantIs: pipeline.ErrUnknownDefinitionType,
		},
		{
			name: "empty definition type",
			setup: func(t *testing.T) {
				setupBuildTest(t)
			},
			args:    []string{"--type", ""},
			wantErr: "a definition type name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			cmd := newBuildCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			err := cmd.ExecuteContext(context.Background())
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestNewSinks(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{
			name: "no optional sinks",
			want: []string{},
		},
		{
			name: "file sinks in publishing order",
			cfg: config.Config{
				Output: config.OutputConfig{
					MetadataFile: filepath.Join(tmpDir, "metadata.json"),
					YAMLFile:     filepath.Join(tmpDir, "glossary.yml"),
				},
			},
			want: []string{
				"metadata file " + filepath.Join(tmpDir, "metadata.json"),
				"yaml file " + filepath.Join(tmpDir, "glossary.yml"),
			},
		},
		{
			name: "s3 sink",
			cfg: config.Config{
				Publish: config.PublishConfig{
					S3: config.S3Config{Bucket: "d2-assets", Key: "Destiny2_term.json", Region: "us-east-1"},
				},
			},
			want: []string{"s3://d2-assets/Destiny2_term.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sinks, closeSinks, err := newSinks(context.Background(), &tt.cfg)
			require.NoError(t, err)
			defer closeSinks()

			names := make([]string, 0, len(sinks))
			for _, sink := range sinks {
				names = append(names, sink.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestPrintBuildSummary(t *testing.T) {
	disableColor(t)

	result := &pipeline.BuildResult{
		Document: output.GlossaryDocument{
			Metadata: output.Metadata{Version: "230101.1", ItemCount: 1234, DataHash: "abc123"},
		},
		OutputFile: "Destiny2_term.json",
		Size:       2048,
		Elapsed:    1500 * time.Millisecond,
	}

	var written bytes.Buffer
	printBuildSummary(&written, result)
	assert.Equal(t, `Wrote 1,234 entries to Destiny2_term.json
  Version:   230101.1
  Data hash: abc123
  Size:      2.0 kB
  Elapsed:   1.5s
`, written.String())

	result.Skipped = true
	var skipped bytes.Buffer
	printBuildSummary(&skipped, result)
	assert.Equal(t, `Glossary unchanged, Destiny2_term.json was not rewritten
  Version:   230101.1
  Data hash: abc123
`, skipped.String())
}

func TestDefinitionTypesFlag(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    DefinitionTypesFlag
		wantErr bool
	}{
		{name: "single", values: []string{"DestinyActivityDefinition"}, want: DefinitionTypesFlag{"DestinyActivityDefinition"}},
		{
			name:   "repeated and comma separated",
			values: []string{"DestinyActivityDefinition", " DestinyInventoryItemLiteDefinition,DestinyActivityDefinition"},
			want:   DefinitionTypesFlag{"DestinyActivityDefinition", "DestinyInventoryItemLiteDefinition"},
		},
		{name: "empty", values: []string{""}, wantErr: true},
		{name: "empty element", values: []string{"DestinyActivityDefinition,"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flag DefinitionTypesFlag
			var err error
			for _, value := range tt.values {
				if err = flag.Set(value); err != nil {
					break
				}
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, flag)
			assert.Equal(t, strings.Join(tt.want, ","), flag.String())
		})
	}

	var nilFlag *DefinitionTypesFlag
	assert.Equal(t, "", nilFlag.String())
}
