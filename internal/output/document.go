// Package output builds the metadata envelope and writes glossary documents.
package output

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/at-ishikawa/d2glossary/internal/glossary"
)

// canonicalJSON is the encoding the content hash is computed over.
var canonicalJSON = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

type Metadata struct {
	Version         string    `json:"version" yaml:"version"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	ItemCount       int       `json:"item_count" yaml:"item_count"`
	DataHash        string    `json:"data_hash" yaml:"data_hash"`
	Source          string    `json:"source" yaml:"source"`
	DefinitionTypes []string  `json:"definition_types" yaml:"definition_types"`
}

type Document[T any] struct {
	Metadata Metadata `json:"metadata"`
	Data     T        `json:"data"`
}

type GlossaryDocument = Document[glossary.Sorted]

// CatalogDocument maps a record hash to its name per language.
type CatalogDocument = Document[map[string]map[string]string]

// ContentHash returns the hex SHA-256 of the canonical encoding of data.
// Map keys are sorted, so the hash does not depend on iteration order.
func ContentHash(data any) (string, error) {
	encoded, err := canonicalJSON.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("canonicalJSON.Marshal > %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// NewGlossaryDocument hashes the final glossary and wraps it with metadata.
func NewGlossaryDocument(version string, timestamp time.Time, source string, definitionTypes []string, entries glossary.Sorted) (GlossaryDocument, error) {
	hash, err := ContentHash(entries.Glossary())
	if err != nil {
		return GlossaryDocument{}, fmt.Errorf("ContentHash > %w", err)
	}
	return GlossaryDocument{
		Metadata: Metadata{
			Version:         version,
			Timestamp:       timestamp.UTC(),
			ItemCount:       len(entries),
			DataHash:        hash,
			Source:          source,
			DefinitionTypes: definitionTypes,
		},
		Data: entries,
	}, nil
}

func NewCatalogDocument(version string, timestamp time.Time, source string, definitionTypes []string, catalog map[string]map[string]string) (CatalogDocument, error) {
	hash, err := ContentHash(catalog)
	if err != nil {
		return CatalogDocument{}, fmt.Errorf("ContentHash > %w", err)
	}
	return CatalogDocument{
		Metadata: Metadata{
			Version:         version,
			Timestamp:       timestamp.UTC(),
			ItemCount:       len(catalog),
			DataHash:        hash,
			Source:          source,
			DefinitionTypes: definitionTypes,
		},
		Data: catalog,
	}, nil
}

// Encode renders v as human readable UTF-8 JSON with two space indentation.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("json.Encoder.Encode > %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile overwrites path with contents.
func WriteFile(path string, contents []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	return writeAndClose(file, path, contents)
}

// writeAndClose writes contents to w and closes it, returning the first error.
func writeAndClose(w io.WriteCloser, path string, contents []byte) error {
	if _, err := w.Write(contents); err != nil {
		_ = w.Close()
		return fmt.Errorf("file.Write(%s) > %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("file.Close(%s) > %w", path, err)
	}
	return nil
}

// ReadMetadata returns the metadata of a previously written document.
func ReadMetadata(path string) (*Metadata, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var document struct {
		Metadata Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", path, err)
	}
	return &document.Metadata, nil
}
