// Package spanprovider defines the Span/Include Provider: the abstract
// collaborator that produces function-body spans (consulted by the
// Call-Graph Extractor's Spatial strategy) and include edges (consulted by
// Graph Builder Pass P4), both derived from parsing the on-disk source tree
// rather than the clangd index itself.
package spanprovider

import (
	"context"

	"github.com/maraichr/clangdgraph/internal/model"
)

// FunctionSpan is one function definition discovered by parsing source, used
// to match against and fill in a Symbol's BodyLocation.
type FunctionSpan struct {
	Name         string
	NameLocation model.Location
	BodyLocation model.Location
}

// Provider is the consumed interface: two pure queries over the project's
// source tree.
type Provider interface {
	// FunctionSpans returns every function definition's name site and body
	// span across the project.
	FunctionSpans(ctx context.Context) ([]FunctionSpan, error)
	// IncludeEdges returns every (including, included) absolute-path pair
	// found by scanning preprocessor include directives.
	IncludeEdges(ctx context.Context) ([]RawIncludeEdge, error)
}

// RawIncludeEdge is an include edge in absolute-path form, as produced by a
// Provider before Pass P4 normalises it to project-relative paths.
type RawIncludeEdge struct {
	IncludingAbsPath string
	IncludedAbsPath  string
}
