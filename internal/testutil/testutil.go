// Package testutil provides shared test helpers for config files and a fake Bungie manifest server.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/d2glossary/internal/bungie"
	"github.com/at-ishikawa/d2glossary/internal/config"
)

// TestAPIKey is the key the fake manifest server accepts.
const TestAPIKey = "test-api-key"

const manifestPath = "/Platform/Destiny2/Manifest/"

// SetupTestConfig writes a config file pointing at baseURL with every file
// path inside tmpDir and no delay between downloads.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()

	configContent := fmt.Sprintf(`bungie:
  base_url: %s
  request_interval: 0s
languages:
  - en
  - zh-chs
overrides:
  file: %s
output:
  file: %s
  catalog_file: %s
`,
		baseURL,
		filepath.Join(tmpDir, "myself.json"),
		filepath.Join(tmpDir, "Destiny2_term.json"),
		filepath.Join(tmpDir, "item-list.json"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// WriteOverrides writes a JSON override file into tmpDir and returns its path.
func WriteOverrides(t *testing.T, tmpDir string, overrides map[string]string) string {
	t.Helper()

	contents, err := json.Marshal(overrides)
	require.NoError(t, err)
	path := filepath.Join(tmpDir, "myself.json")
	require.NoError(t, os.WriteFile(path, contents, 0644))
	return path
}

// ManifestFixture is the content served by NewManifestServer.
type ManifestFixture struct {
	Version string
	// definition type -> language -> table
	Tables map[string]map[string]bungie.DefinitionTable
}

// ContentPath is the path the fake server publishes for one table.
func (f ManifestFixture) ContentPath(language, definitionType string) string {
	return fmt.Sprintf("/common/destiny2_content/json/%s/%s-%s.json", language, definitionType, f.Version)
}

// DefaultFixture has one item and one activity table in English and Simplified Chinese.
func DefaultFixture() ManifestFixture {
	return ManifestFixture{
		Version: "230101.1",
		Tables: map[string]map[string]bungie.DefinitionTable{
			config.DefinitionTypeInventoryItem: {
				"en": {
					"1": NewRecord(1, "Ghost Shell", 39),
					"2": NewRecord(2, "Rat King's Crew", 1),
					"3": NewRecord(3, "Ornament", 39, 44),
				},
				"zh-chs": {
					"1": NewRecord(1, "幽灵外壳", 39),
					"2": NewRecord(2, "鼠王小队", 1),
					"3": NewRecord(3, "装饰", 39, 44),
				},
			},
			config.DefinitionTypeActivity: {
				"en": {
					"10": NewRecord(10, "The Whisper"),
					"11": NewRecord(11, "Vault of Glass"),
				},
				"zh-chs": {
					"10": NewRecord(10, "低语"),
					"11": NewRecord(11, "玻璃拱顶"),
				},
			},
		},
	}
}

func NewRecord(hash uint32, name string, categories ...uint32) bungie.DefinitionRecord {
	return bungie.DefinitionRecord{
		Hash:               hash,
		DisplayProperties:  bungie.DisplayProperties{Name: name},
		ItemCategoryHashes: categories,
	}
}

// NewManifestServer serves the manifest and every table of fixture.
// Requests without TestAPIKey get 401. The server is closed on cleanup.
func NewManifestServer(t *testing.T, fixture ManifestFixture) *httptest.Server {
	t.Helper()

	paths := make(map[string]map[string]string)
	mux := http.NewServeMux()
	for definitionType, tables := range fixture.Tables {
		for language, table := range tables {
			if paths[language] == nil {
				paths[language] = make(map[string]string)
			}
			path := fixture.ContentPath(language, definitionType)
			paths[language][definitionType] = path
			mux.HandleFunc(path, jsonHandler(table))
		}
	}
	mux.HandleFunc(manifestPath, jsonHandler(bungie.ManifestResponse{
		Response: bungie.Manifest{
			Version:                        fixture.Version,
			JSONWorldComponentContentPaths: paths,
		},
		ErrorCode:   bungie.ErrorCodeSuccess,
		ErrorStatus: "Success",
		Message:     "Ok",
	}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != TestAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func jsonHandler(body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}
