package glossary

import (
	"github.com/at-ishikawa/d2glossary/internal/bungie"
)

// Rule decides which records of one definition type are kept.
type Rule struct {
	IncludeCategories []uint32
	ExcludeCategories []uint32
}

// CategoryFiltered reports whether the rule filters on item category hashes.
func (rule Rule) CategoryFiltered() bool {
	return len(rule.IncludeCategories) > 0
}

// Record is one retained definition with its trimmed name per language.
type Record struct {
	Key   string
	Names map[string]string
}

// Select returns the records of the base (first) language table that pass
// the rule, in ascending key order.
//
// A category-filtered rule keeps a record iff it has an included category,
// no excluded category and a base-language name. Any other rule keeps a
// record iff it has a name in every language.
func Select(tables map[string]bungie.DefinitionTable, languages []string, rule Rule) []Record {
	if len(languages) == 0 {
		return nil
	}
	base := tables[languages[0]]

	records := make([]Record, 0, len(base))
	for _, key := range base.SortedKeys() {
		baseRecord := base[key]

		names := make(map[string]string, len(languages))
		for _, language := range languages {
			if record, ok := tables[language][key]; ok {
				names[language] = record.Name()
			}
		}

		if rule.CategoryFiltered() {
			if !baseRecord.HasAnyCategory(rule.IncludeCategories) ||
				baseRecord.HasAnyCategory(rule.ExcludeCategories) ||
				baseRecord.Name() == "" {
				continue
			}
		} else if !hasAllNames(names, languages) {
			continue
		}

		records = append(records, Record{Key: key, Names: names})
	}
	return records
}

// Extract maps the first configured language's name to the second's for
// every selected record. Records missing either name are skipped.
func Extract(tables map[string]bungie.DefinitionTable, languages []string, rule Rule) Glossary {
	return FromRecords(Select(tables, languages, rule), languages)
}

// FromRecords maps the first language's name of each record to the second's.
// Records missing either name are skipped.
func FromRecords(records []Record, languages []string) Glossary {
	g := make(Glossary)
	if len(languages) < 2 {
		return g
	}
	for _, record := range records {
		g.Set(record.Names[languages[0]], record.Names[languages[1]])
	}
	return g
}

func hasAllNames(names map[string]string, languages []string) bool {
	for _, language := range languages {
		if names[language] == "" {
			return false
		}
	}
	return true
}
