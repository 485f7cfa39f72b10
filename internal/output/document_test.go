package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/d2glossary/internal/glossary"
)

var testTimestamp = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestContentHash(t *testing.T) {
	a, err := ContentHash(glossary.Glossary{"Hive": "蜂巢", "Vault of Glass": "玻璃拱顶"})
	require.NoError(t, err)
	b, err := ContentHash(glossary.Glossary{"Vault of Glass": "玻璃拱顶", "Hive": "蜂巢"})
	require.NoError(t, err)
	c, err := ContentHash(glossary.Glossary{"Hive": "邪姬", "Vault of Glass": "玻璃拱顶"})
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	empty, err := ContentHash(glossary.Glossary{})
	require.NoError(t, err)
	// sha256 of "{}"
	assert.Equal(t, "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a", empty)
}

func TestNewGlossaryDocument(t *testing.T) {
	entries := glossary.Sorted{
		{Source: "Vault of Glass", Target: "玻璃拱顶"},
		{Source: "Hive", Target: "蜂巢"},
	}
	local := time.Date(2025, 1, 2, 12, 4, 5, 0, time.FixedZone("JST", 9*60*60))

	got, err := NewGlossaryDocument("230101.1", local, "Bungie Destiny 2 Manifest", []string{"DestinyActivityDefinition"}, entries)
	require.NoError(t, err)

	wantHash, err := ContentHash(entries.Glossary())
	require.NoError(t, err)
	assert.Equal(t, Metadata{
		Version:         "230101.1",
		Timestamp:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		ItemCount:       2,
		DataHash:        wantHash,
		Source:          "Bungie Destiny 2 Manifest",
		DefinitionTypes: []string{"DestinyActivityDefinition"},
	}, got.Metadata)
	assert.Equal(t, entries, got.Data)
}

func TestNewGlossaryDocument_IsIdempotent(t *testing.T) {
	build := func() []byte {
		g := glossary.Merge(
			glossary.Glossary{"The Hive": "蜂巢", "Rat King's Crew": "鼠王小队", "Thorn": "荆棘"},
			glossary.Glossary{"Thorn": "棘刺"},
		)
		doc, err := NewGlossaryDocument("v", testTimestamp, "src", nil, glossary.Sort(glossary.Augment(g, nil)))
		require.NoError(t, err)
		encoded, err := Encode(doc)
		require.NoError(t, err)
		return encoded
	}

	first := build()
	for range 5 {
		assert.Equal(t, first, build())
	}
}

func TestEncode(t *testing.T) {
	doc := GlossaryDocument{
		Metadata: Metadata{
			Version:         "230101.1",
			Timestamp:       testTimestamp,
			ItemCount:       2,
			DataHash:        "abc",
			Source:          "Bungie Destiny 2 Manifest",
			DefinitionTypes: []string{"DestinyInventoryItemLiteDefinition"},
		},
		Data: glossary.Sorted{
			{Source: "Rat King’s Crew", Target: "鼠王小队"},
			{Source: "A&B", Target: "<甲乙>"},
		},
	}

	got, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, `{
  "metadata": {
    "version": "230101.1",
    "timestamp": "2025-01-02T03:04:05Z",
    "item_count": 2,
    "data_hash": "abc",
    "source": "Bungie Destiny 2 Manifest",
    "definition_types": [
      "DestinyInventoryItemLiteDefinition"
    ]
  },
  "data": {
    "Rat King’s Crew": "鼠王小队",
    "A&B": "<甲乙>"
  }
}
`, string(got))
}

func TestNewCatalogDocument(t *testing.T) {
	catalog := map[string]map[string]string{
		"1": {"en": "Ghost Shell", "zh-chs": "幽灵外壳"},
	}
	got, err := NewCatalogDocument("230101.1", testTimestamp, "src", []string{"DestinyInventoryItemLiteDefinition"}, catalog)
	require.NoError(t, err)

	wantHash, err := ContentHash(catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Metadata.ItemCount)
	assert.Equal(t, wantHash, got.Metadata.DataHash)
	assert.Equal(t, catalog, got.Data)
}

func TestWriteFileAndReadMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Destiny2_term.json")

	doc, err := NewGlossaryDocument("230101.1", testTimestamp, "src", []string{"DestinyActivityDefinition"}, glossary.Sorted{{Source: "Hive", Target: "蜂巢"}})
	require.NoError(t, err)
	encoded, err := Encode(doc)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, encoded))

	got, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata, *got)

	_, err = ReadMetadata(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	_, err = ReadMetadata(broken)
	assert.Error(t, err)

	assert.Error(t, WriteFile(filepath.Join(dir, "missing-dir", "out.json"), encoded))
}

type failingFile struct {
	writeErr error
	closeErr error
	closed   bool
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteAndClose(t *testing.T) {
	errDiskFull := errors.New("no space left on device")

	tests := []struct {
		name    string
		file    *failingFile
		wantErr string
	}{
		{name: "success", file: &failingFile{}},
		{
			name:    "close fails",
			file:    &failingFile{closeErr: errDiskFull},
			wantErr: "file.Close(out.json) > no space left on device",
		},
		{
			name:    "write fails",
			file:    &failingFile{writeErr: errDiskFull, closeErr: errors.New("already closed")},
			wantErr: "file.Write(out.json) > no space left on device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeAndClose(tt.file, "out.json", []byte("{}"))
			assert.True(t, tt.file.closed)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
			assert.ErrorIs(t, err, errDiskFull)
		})
	}
}
