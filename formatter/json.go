package formatter

import (
	"encoding/json"
	"io"

	"github.com/gnolang/tspec/specgen"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PredicatesByFile keys the predicate declarations of each output by file.
func PredicatesByFile(outs []specgen.Output) map[string][]specgen.Predicate {
	m := make(map[string][]specgen.Predicate, len(outs))
	for _, out := range outs {
		m[out.File] = out.Predicates
	}
	return m
}

// ClassesByFile keys the class summaries of each output by file.
func ClassesByFile(outs []specgen.Output) map[string][]specgen.Class {
	m := make(map[string][]specgen.Class, len(outs))
	for _, out := range outs {
		if len(out.Classes) > 0 {
			m[out.File] = out.Classes
		}
	}
	return m
}
