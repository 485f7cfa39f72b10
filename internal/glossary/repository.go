package glossary

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/d2glossary/internal/database"
)

const insertBatchSize = 500

// MaxSourceTermLength is the length in characters of glossary_entries.source_term.
// utf8mb4 keys are limited to 3072 bytes.
const MaxSourceTermLength = 768

var ErrSourceTermTooLong = errors.New("source term is too long")

// Repository stores the latest generated glossary.
type Repository interface {
	ReplaceAll(ctx context.Context, version string, entries Sorted) error
}

// entryRow is one row of glossary_entries.
type entryRow struct {
	SourceTerm      string `db:"source_term"`
	TargetTerm      string `db:"target_term"`
	TokenCount      int    `db:"token_count"`
	Position        int    `db:"position"`
	ManifestVersion string `db:"manifest_version"`
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

var _ Repository = (*DBRepository)(nil)

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// ReplaceAll swaps the stored entries for entries in a single transaction.
func (r *DBRepository) ReplaceAll(ctx context.Context, version string, entries Sorted) error {
	rows := make([]entryRow, 0, len(entries))
	for i, entry := range entries {
		if length := utf8.RuneCountInString(entry.Source); length > MaxSourceTermLength {
			return fmt.Errorf("%.32q... has %d characters, limit %d: %w",
				entry.Source, length, MaxSourceTermLength, ErrSourceTermTooLong)
		}
		rows = append(rows, entryRow{
			SourceTerm:      entry.Source,
			TargetTerm:      entry.Target,
			TokenCount:      TokenCount(entry.Source),
			Position:        i,
			ManifestVersion: version,
		})
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM glossary_entries"); err != nil {
			return fmt.Errorf("delete glossary entries: %w", err)
		}
		for start := 0; start < len(rows); start += insertBatchSize {
			end := min(start+insertBatchSize, len(rows))
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO glossary_entries (source_term, target_term, token_count, position, manifest_version)
				VALUES (:source_term, :target_term, :token_count, :position, :manifest_version)`,
				rows[start:end]); err != nil {
				return fmt.Errorf("insert glossary entries: %w", err)
			}
		}
		return nil
	})
}
