package output

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/d2glossary/internal/glossary"
)

//go:generate mockgen -source=sink.go -destination=../mocks/output/mock_sink.go -package=mock_output

// Artifact is a glossary document together with its encoded JSON form.
type Artifact struct {
	Document GlossaryDocument
	JSON     []byte
}

// Sink receives the glossary after the primary output file was written.
type Sink interface {
	Name() string
	Write(ctx context.Context, artifact Artifact) error
}

// MetadataFileSink writes the metadata envelope on its own.
type MetadataFileSink struct {
	path string
}

func NewMetadataFileSink(path string) *MetadataFileSink {
	return &MetadataFileSink{path: path}
}

func (s *MetadataFileSink) Name() string {
	return "metadata file " + s.path
}

func (s *MetadataFileSink) Write(_ context.Context, artifact Artifact) error {
	contents, err := Encode(artifact.Document.Metadata)
	if err != nil {
		return fmt.Errorf("Encode > %w", err)
	}
	if err := WriteFile(s.path, contents); err != nil {
		return fmt.Errorf("WriteFile > %w", err)
	}
	return nil
}

// YAMLFileSink exports the glossary as an ordered list of entries.
type YAMLFileSink struct {
	path string
}

func NewYAMLFileSink(path string) *YAMLFileSink {
	return &YAMLFileSink{path: path}
}

type yamlDocument struct {
	Metadata Metadata         `yaml:"metadata"`
	Entries  []glossary.Entry `yaml:"entries"`
}

func (s *YAMLFileSink) Name() string {
	return "yaml file " + s.path
}

func (s *YAMLFileSink) Write(_ context.Context, artifact Artifact) error {
	contents, err := yaml.Marshal(yamlDocument{
		Metadata: artifact.Document.Metadata,
		Entries:  artifact.Document.Data,
	})
	if err != nil {
		return fmt.Errorf("yaml.Marshal > %w", err)
	}
	if err := WriteFile(s.path, contents); err != nil {
		return fmt.Errorf("WriteFile > %w", err)
	}
	return nil
}

// RepositorySink replaces the stored glossary entries.
type RepositorySink struct {
	repository glossary.Repository
}

func NewRepositorySink(repository glossary.Repository) *RepositorySink {
	return &RepositorySink{repository: repository}
}

func (s *RepositorySink) Name() string {
	return "database"
}

func (s *RepositorySink) Write(ctx context.Context, artifact Artifact) error {
	if err := s.repository.ReplaceAll(ctx, artifact.Document.Metadata.Version, artifact.Document.Data); err != nil {
		return fmt.Errorf("repository.ReplaceAll > %w", err)
	}
	return nil
}
