package callgraph

import (
	"sort"

	"github.com/maraichr/clangdgraph/internal/model"
)

// SpatialStrategy resolves calls by containment: a reference is a call
// site of whichever function's body lexically contains it. Used when the
// index carries no container provenance, requiring every Function's
// body_location to have been attached first via AttachSpans.
type SpatialStrategy struct{}

// funcSpan pairs a function id with its body span, for the per-file
// spatial index.
type funcSpan struct {
	id   string
	body model.RelativeLocation
}

// Extract builds a per-file index of (body span, function id) sorted
// ascending by start line, then for every legacy-format call reference
// (kind 4 or 12) finds its containing function body via a binary search on
// start line followed by a short backward scan.
func (SpatialStrategy) Extract(graph *model.SymbolGraph) []model.CallRelation {
	index := buildSpatialIndex(graph)

	var relations []model.CallRelation
	for calleeID, callee := range graph.Symbols {
		for _, ref := range callee.References {
			if !model.IsLegacyCall(ref.Kind) {
				continue
			}
			callerID, ok := findContainingFunction(index, ref.Location)
			if !ok {
				continue // outside every body: top-level initialiser or similar
			}
			relations = append(relations, model.CallRelation{
				CallerID: callerID,
				CalleeID: calleeID,
				Site:     ref.Location,
			})
		}
	}
	return relations
}

// buildSpatialIndex groups every span-resolved Function by its body's
// file, sorted ascending by start line so findContainingFunction can
// binary-search it.
func buildSpatialIndex(graph *model.SymbolGraph) map[string][]funcSpan {
	index := make(map[string][]funcSpan)
	for id, sym := range graph.Symbols {
		if !sym.IsFunction() || sym.BodyLocation == nil {
			continue
		}
		fileURI := sym.Definition.FileURI
		index[fileURI] = append(index[fileURI], funcSpan{id: id, body: *sym.BodyLocation})
	}
	for _, spans := range index {
		sort.Slice(spans, func(i, j int) bool {
			return spans[i].body.StartLine < spans[j].body.StartLine
		})
	}
	return index
}

// findContainingFunction locates the function whose body contains loc. A
// binary search on start line finds the last span starting at-or-before
// loc, then a backward scan (spans may be unordered among equal start
// lines, and an enclosing outer span may start earlier than a sibling that
// doesn't contain loc) checks containment directly.
func findContainingFunction(index map[string][]funcSpan, loc model.Location) (string, bool) {
	spans, ok := index[loc.FileURI]
	if !ok {
		return "", false
	}

	i := sort.Search(len(spans), func(i int) bool {
		return spans[i].body.StartLine > loc.StartLine
	})

	// Scan the full backward run rather than stopping early: real files
	// hold only tens to hundreds of functions, so the scan stays short.
	for j := i - 1; j >= 0; j-- {
		if withinBody(loc, spans[j].body) {
			return spans[j].id, true
		}
	}
	return "", false
}

// withinBody reports whether loc's start position falls inside body,
// boundaries inclusive.
func withinBody(loc model.Location, body model.RelativeLocation) bool {
	startOK := loc.StartLine > body.StartLine ||
		(loc.StartLine == body.StartLine && loc.StartCol >= body.StartCol)
	endOK := loc.StartLine < body.EndLine ||
		(loc.StartLine == body.EndLine && loc.StartCol <= body.EndCol)
	return startOK && endOK
}
