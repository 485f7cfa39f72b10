package glossary

import (
	"cmp"
	"slices"
	"strings"
)

const (
	straightApostrophe = "'"
	curlyApostrophe    = "’"
	articlePrefix      = "The "
)

// Merge unions glossaries in order. Later glossaries win on the same key, so
// overrides are passed last.
func Merge(glossaries ...Glossary) Glossary {
	merged := make(Glossary)
	for _, g := range glossaries {
		for source, target := range g {
			merged.Set(source, target)
		}
	}
	return merged
}

// Augment returns a copy of g with spelling variants added: a curly
// apostrophe form of keys containing a straight one, and keys starting
// with "The " without that prefix.
//
// Variants are derived from g only, never from other variants. A variant
// takes the value of its source even when g already holds the variant key,
// unless the key is in protected. Between colliding variants the one derived
// from the smaller source key wins.
func Augment(g Glossary, protected Glossary) Glossary {
	augmented := g.Clone()

	sources := make([]string, 0, len(g))
	for source := range g {
		sources = append(sources, source)
	}
	slices.Sort(sources)

	generated := make(map[string]struct{})
	for _, source := range sources {
		target := g[source]
		for _, variant := range variants(source) {
			if _, ok := protected[variant]; ok {
				continue
			}
			if _, ok := generated[variant]; ok {
				continue
			}
			if augmented.Set(variant, target) {
				generated[variant] = struct{}{}
			}
		}
	}
	return augmented
}

func variants(source string) []string {
	var result []string
	if strings.Contains(source, straightApostrophe) {
		result = append(result, strings.ReplaceAll(source, straightApostrophe, curlyApostrophe))
	}
	if withoutArticle, ok := strings.CutPrefix(source, articlePrefix); ok {
		result = append(result, strings.TrimSpace(withoutArticle))
	}
	return result
}

// Sort orders entries by descending token count of the source term, then by
// source term.
func Sort(g Glossary) Sorted {
	sorted := make(Sorted, 0, len(g))
	for source, target := range g {
		sorted = append(sorted, Entry{Source: source, Target: target})
	}
	slices.SortFunc(sorted, func(a, b Entry) int {
		if c := cmp.Compare(TokenCount(b.Source), TokenCount(a.Source)); c != 0 {
			return c
		}
		return strings.Compare(a.Source, b.Source)
	})
	return sorted
}
