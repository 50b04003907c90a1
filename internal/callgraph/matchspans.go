package callgraph

import (
	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
)

// spanKey is the composite key a function symbol is matched against spans
// on: (name, file URI, definition line, definition column).
type spanKey struct {
	name      string
	fileURI   string
	startLine int
	startCol  int
}

func keyOf(name, fileURI string, startLine, startCol int) spanKey {
	return spanKey{name: name, fileURI: fileURI, startLine: startLine, startCol: startCol}
}

// AttachSpans matches every Function symbol's definition site against the
// Span Provider's output by composite key and writes the matched span's
// body onto the Symbol exactly once. It must run before SpatialStrategy's
// Extract. Symbols left unmatched stay span-less and are unresolvable as
// callers (coreerr.SpanMismatch, counted by the caller).
func AttachSpans(graph *model.SymbolGraph, spans []spanprovider.FunctionSpan) (matched, unmatched int) {
	lookup := make(map[spanKey]spanprovider.FunctionSpan, len(spans))
	for _, s := range spans {
		lookup[keyOf(s.Name, s.NameLocation.FileURI, s.NameLocation.StartLine, s.NameLocation.StartCol)] = s
	}

	for _, sym := range graph.Symbols {
		if !sym.IsFunction() || sym.Definition == nil {
			continue
		}
		k := keyOf(sym.Name, sym.Definition.FileURI, sym.Definition.StartLine, sym.Definition.StartCol)
		span, ok := lookup[k]
		if !ok {
			unmatched++
			continue
		}
		body := span.BodyLocation
		sym.BodyLocation = &model.RelativeLocation{
			StartLine: body.StartLine,
			StartCol:  body.StartCol,
			EndLine:   body.EndLine,
			EndCol:    body.EndCol,
		}
		matched++
	}
	return matched, unmatched
}
