// Package glossary turns manifest definition tables into a sorted bilingual glossary.
package glossary

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// Glossary maps a source-language term to its target-language term.
type Glossary map[string]string

// Set stores the trimmed pair and reports false when either side is blank.
func (g Glossary) Set(source, target string) bool {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" || target == "" {
		return false
	}
	g[source] = target
	return true
}

func (g Glossary) Clone() Glossary {
	cloned := make(Glossary, len(g))
	for source, target := range g {
		cloned[source] = target
	}
	return cloned
}

type Entry struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Sorted is a glossary in output order. Its JSON form is an object whose
// members keep the slice order.
type Sorted []Entry

func (s Sorted) Glossary() Glossary {
	g := make(Glossary, len(s))
	for _, entry := range s {
		g[entry.Source] = entry.Target
	}
	return g
}

func (s Sorted) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, entry := range s {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(entry.Source)
		stream.WriteString(entry.Target)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// TokenCount is the number of whitespace separated words in term.
func TokenCount(term string) int {
	return len(strings.Fields(term))
}
