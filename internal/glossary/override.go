package glossary

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// OverrideFile is the result of reading a manually curated glossary.
type OverrideFile struct {
	Entries Glossary
	// Rejected lists source terms dropped because a side was blank.
	Rejected []string
}

// ReadOverrides reads a JSON object of source term to target term.
func ReadOverrides(path string) (*OverrideFile, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", path, err)
	}

	result := &OverrideFile{Entries: make(Glossary, len(raw))}
	for source, target := range raw {
		if !result.Entries.Set(source, target) {
			result.Rejected = append(result.Rejected, source)
		}
	}
	slices.Sort(result.Rejected)
	return result, nil
}

// LoadOverrides reads the override file, falling back to an empty set with a
// warning when it is missing or malformed. An empty path disables overrides.
func LoadOverrides(path string) Glossary {
	if path == "" {
		slog.Default().Debug("no override file configured")
		return Glossary{}
	}

	result, err := ReadOverrides(path)
	if err != nil {
		slog.Default().Warn("override file could not be loaded, continuing without overrides",
			"path", path,
			"error", err)
		return Glossary{}
	}
	if len(result.Rejected) > 0 {
		slog.Default().Warn("override entries with a blank term were ignored",
			"path", path,
			"terms", result.Rejected)
	}
	return result.Entries
}
