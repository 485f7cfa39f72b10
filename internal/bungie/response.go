// https://bungie-net.github.io/multi/operation_get_Destiny2-GetDestinyManifest.html
package bungie

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrorCodeSuccess is the PlatformErrorCodes value of a successful call.
const ErrorCodeSuccess = 1

var ErrContentPathNotFound = errors.New("content path not found")

// ManifestResponse is the envelope returned by GET /Platform/Destiny2/Manifest/.
type ManifestResponse struct {
	Response    Manifest `json:"Response"`
	ErrorCode   int      `json:"ErrorCode"`
	ErrorStatus string   `json:"ErrorStatus"`
	Message     string   `json:"Message"`
}

type Manifest struct {
	Version string `json:"version"`
	// language -> definition type -> relative content path
	JSONWorldComponentContentPaths map[string]map[string]string `json:"jsonWorldComponentContentPaths"`
}

// ContentPath returns the relative path of one definition table.
func (m Manifest) ContentPath(language, definitionType string) (string, error) {
	paths, ok := m.JSONWorldComponentContentPaths[language]
	if !ok {
		return "", fmt.Errorf("language %s: %w", language, ErrContentPathNotFound)
	}
	path, ok := paths[definitionType]
	if !ok || path == "" {
		return "", fmt.Errorf("language %s, definition %s: %w", language, definitionType, ErrContentPathNotFound)
	}
	return path, nil
}

// DefinitionTable maps the decimal record hash to its definition.
type DefinitionTable map[string]DefinitionRecord

// SortedKeys returns the table keys in ascending numeric order.
// Keys that are not numbers sort after numeric ones, lexicographically.
func (t DefinitionTable) SortedKeys() []string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		na, errA := strconv.ParseUint(a, 10, 64)
		nb, errB := strconv.ParseUint(b, 10, 64)
		switch {
		case errA == nil && errB == nil:
			if na < nb {
				return -1
			}
			if na > nb {
				return 1
			}
			return 0
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

type DefinitionRecord struct {
	Hash               uint32            `json:"hash"`
	DisplayProperties  DisplayProperties `json:"displayProperties"`
	ItemCategoryHashes []uint32          `json:"itemCategoryHashes,omitempty"`
	Redacted           bool              `json:"redacted"`
}

type DisplayProperties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// Name returns the display name with surrounding whitespace removed.
func (r DefinitionRecord) Name() string {
	return strings.TrimSpace(r.DisplayProperties.Name)
}

// HasAnyCategory reports whether the record carries at least one of the hashes.
func (r DefinitionRecord) HasAnyCategory(hashes []uint32) bool {
	for _, hash := range r.ItemCategoryHashes {
		if slices.Contains(hashes, hash) {
			return true
		}
	}
	return false
}
